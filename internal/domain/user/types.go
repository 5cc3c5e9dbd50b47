package user

import "time"

type Group string

const (
	GroupStandard Group = "standard"
	GroupPremium  Group = "premium"
	GroupAdmin    Group = "admin"
)

func (g Group) String() string {
	return string(g)
}

func (g Group) IsValid() bool {
	switch g {
	case GroupStandard, GroupPremium, GroupAdmin:
		return true
	default:
		return false
	}
}

// Unlimited marks a policy field with no cap.
const Unlimited = -1

// Policy is the static per-group limit table. It affects only
// caller-side ceilings (how long, how far ahead, how many, how much
// extension); the admission arithmetic itself is group-blind.
type Policy struct {
	MaxBookingDuration time.Duration
	MaxAdvanceDays     int
	MaxConcurrent      int
	MaxExtendHours     int
}

var policies = map[Group]Policy{
	GroupStandard: {
		MaxBookingDuration: 8 * time.Hour,
		MaxAdvanceDays:     7,
		MaxConcurrent:      2,
		MaxExtendHours:     4,
	},
	GroupPremium: {
		MaxBookingDuration: 24 * time.Hour,
		MaxAdvanceDays:     14,
		MaxConcurrent:      5,
		MaxExtendHours:     8,
	},
	GroupAdmin: {
		MaxBookingDuration: Unlimited,
		MaxAdvanceDays:     Unlimited,
		MaxConcurrent:      Unlimited,
		MaxExtendHours:     24,
	},
}

// PolicyFor resolves the limit table for a group. Unknown groups fall
// back to the standard policy.
func PolicyFor(g Group) Policy {
	if p, ok := policies[g]; ok {
		return p
	}
	return policies[GroupStandard]
}

func (p Policy) AllowsDuration(d time.Duration) bool {
	return p.MaxBookingDuration < 0 || d <= p.MaxBookingDuration
}

func (p Policy) AllowsAdvance(now, start time.Time) bool {
	if p.MaxAdvanceDays < 0 {
		return true
	}
	return !start.After(now.AddDate(0, 0, p.MaxAdvanceDays))
}

func (p Policy) AllowsConcurrent(current int) bool {
	return p.MaxConcurrent < 0 || current < p.MaxConcurrent
}

func (p Policy) AllowsExtension(hours int) bool {
	return p.MaxExtendHours < 0 || hours <= p.MaxExtendHours
}
