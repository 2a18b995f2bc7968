package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	userRepo "naffles.com/pointsbackend/internal/modules/user/repository"
)

func TestParseBulkCreditCSV(t *testing.T) {
	input := `Type,Type Value,Points Value
wallet_address,0xDEADBEEF,100
twitter_username,@naffler,50
discord_username,naffler#1234,25
`
	rows, badRows, err := ParseBulkCreditCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, badRows)
	require.Len(t, rows, 3)

	assert.Equal(t, userRepo.IdentifierWallet, rows[0].IdentifierType)
	assert.Equal(t, "0xDEADBEEF", rows[0].Identifier)
	assert.Equal(t, int64(100), rows[0].Points)
	assert.Equal(t, 2, rows[0].Line)

	assert.Equal(t, userRepo.IdentifierTwitter, rows[1].IdentifierType)
	assert.Equal(t, userRepo.IdentifierDiscord, rows[2].IdentifierType)
}

func TestParseBulkCreditCSV_Aliases(t *testing.T) {
	input := `Type,Type Value,Points Value
wallet,0xABC,10
Twitter,someone,20
`
	rows, badRows, err := ParseBulkCreditCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, badRows)
	require.Len(t, rows, 2)
	assert.Equal(t, userRepo.IdentifierWallet, rows[0].IdentifierType)
	assert.Equal(t, userRepo.IdentifierTwitter, rows[1].IdentifierType)
}

func TestParseBulkCreditCSV_BadRowsDoNotAbort(t *testing.T) {
	input := `Type,Type Value,Points Value
wallet_address,0xAAA,100
email,someone@example.com,50
wallet_address,,25
wallet_address,0xBBB,-5
wallet_address,0xCCC,abc
wallet_address,0xDDD,75
`
	rows, badRows, err := ParseBulkCreditCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "0xAAA", rows[0].Identifier)
	assert.Equal(t, "0xDDD", rows[1].Identifier)

	require.Len(t, badRows, 4)
	assert.Equal(t, 3, badRows[0].Line)
	assert.Contains(t, badRows[0].Error, "unknown identifier type")
	assert.Contains(t, badRows[1].Error, "empty identifier")
	assert.Contains(t, badRows[2].Error, "positive")
	assert.Contains(t, badRows[3].Error, "invalid points value")
}

func TestParseBulkCreditCSV_HeaderMismatch(t *testing.T) {
	_, _, err := ParseBulkCreditCSV(strings.NewReader("User,Points\nfoo,10\n"))
	assert.Error(t, err)

	// Header matching is case-insensitive.
	rows, _, err := ParseBulkCreditCSV(strings.NewReader("type,type value,points value\nwallet,0xA,1\n"))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestParseBulkCreditCSV_Empty(t *testing.T) {
	_, _, err := ParseBulkCreditCSV(strings.NewReader(""))
	assert.Error(t, err)

	rows, badRows, err := ParseBulkCreditCSV(strings.NewReader("Type,Type Value,Points Value\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, badRows)
}
