package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"naffles.com/pointsbackend/internal/model"
)

func TestBasePointsFor(t *testing.T) {
	base, ok := BasePointsFor(ActivityBlackjack)
	assert.True(t, ok)
	assert.Equal(t, int64(5), base)

	base, ok = BasePointsFor(ActivityStaking)
	assert.True(t, ok)
	assert.Equal(t, int64(100), base)

	_, ok = BasePointsFor("gaming_slots")
	assert.False(t, ok)

	_, ok = BasePointsFor("")
	assert.False(t, ok)
}

func TestActivityTypeOf(t *testing.T) {
	assert.Equal(t, "gaming", ActivityTypeOf(ActivityBlackjack))
	assert.Equal(t, "gaming", ActivityTypeOf(ActivityCoinflip))
	assert.Equal(t, "raffles", ActivityTypeOf(ActivityRaffleCreate))
	assert.Equal(t, "raffles", ActivityTypeOf(ActivityTicketPurchase))
	assert.Equal(t, "staking", ActivityTypeOf(ActivityStaking))
	assert.Equal(t, "general", ActivityTypeOf(ActivityDailyLogin))
	assert.Equal(t, "general", ActivityTypeOf(ActivityTwitterFollow))
}

func TestCategoryForActivity(t *testing.T) {
	assert.Equal(t, model.CategoryGaming, CategoryForActivity(ActivityBlackjack))
	assert.Equal(t, model.CategoryRaffles, CategoryForActivity(ActivityTicketPurchase))

	// Activities outside gaming and raffles only feed the points board.
	assert.Equal(t, "", CategoryForActivity(ActivityDailyLogin))
	assert.Equal(t, "", CategoryForActivity(ActivityStaking))
}
