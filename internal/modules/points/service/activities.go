package service

import "strings"

// Named platform activities.
const (
	ActivityDailyLogin       = "daily_login"
	ActivityRaffleCreate     = "raffle_create"
	ActivityTicketPurchase   = "raffle_ticket_purchase"
	ActivityBlackjack        = "gaming_blackjack"
	ActivityCoinflip         = "gaming_coinflip"
	ActivityRockPaperScissor = "gaming_rock_paper_scissors"
	ActivityStaking          = "token_staking"
	ActivityReferral         = "referral_signup"
	ActivityCommunityJoin    = "community_join"
	ActivityTwitterFollow    = "social_twitter_follow"
	ActivityDiscordJoin      = "social_discord_join"
)

// basePoints is the award policy table. An activity missing from this map is
// a hard failure, not a zero award.
var basePoints = map[string]int64{
	ActivityDailyLogin:       10,
	ActivityRaffleCreate:     50,
	ActivityTicketPurchase:   10,
	ActivityBlackjack:        5,
	ActivityCoinflip:         3,
	ActivityRockPaperScissor: 3,
	ActivityStaking:          100,
	ActivityReferral:         25,
	ActivityCommunityJoin:    15,
	ActivityTwitterFollow:    20,
	ActivityDiscordJoin:      20,
}

// BasePointsFor returns the base award for an activity key.
func BasePointsFor(activity string) (int64, bool) {
	base, ok := basePoints[activity]
	return base, ok
}

// ActivityTypeOf buckets an activity key for partner-token multiplier lookup
// and leaderboard categorization.
func ActivityTypeOf(activity string) string {
	switch {
	case strings.HasPrefix(activity, "gaming_"):
		return "gaming"
	case strings.HasPrefix(activity, "raffle_"):
		return "raffles"
	case activity == ActivityStaking:
		return "staking"
	default:
		return "general"
	}
}

// CategoryForActivity maps an activity to the leaderboard category it feeds
// besides the overall points board, or "" when it feeds only the overall one.
func CategoryForActivity(activity string) string {
	switch ActivityTypeOf(activity) {
	case "gaming":
		return "gaming"
	case "raffles":
		return "raffles"
	default:
		return ""
	}
}
