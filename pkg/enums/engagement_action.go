package enums

import "fmt"

// EngagementAction names a loyalty-program event that earns points.
type EngagementAction string

const (
	EngagementActionReferralSignup   EngagementAction = "referral_signup"
	EngagementActionCompletedBooking EngagementAction = "completed_booking"
	EngagementActionComboExperience  EngagementAction = "combo_experience"
	EngagementActionBirthdayClaim    EngagementAction = "birthday_claim"
	EngagementActionLotteryPlay      EngagementAction = "lottery_play"
	EngagementActionFamilyBooking    EngagementAction = "family_booking"
)

var validEngagementActions = []EngagementAction{
	EngagementActionReferralSignup,
	EngagementActionCompletedBooking,
	EngagementActionComboExperience,
	EngagementActionBirthdayClaim,
	EngagementActionLotteryPlay,
	EngagementActionFamilyBooking,
}

// engagementPoints maps each action to the loyalty points it is worth.
var engagementPoints = map[EngagementAction]int{
	EngagementActionReferralSignup:   100,
	EngagementActionCompletedBooking: 50,
	EngagementActionComboExperience:  80,
	EngagementActionBirthdayClaim:    70,
	EngagementActionLotteryPlay:      40,
	EngagementActionFamilyBooking:    100,
}

// String implements fmt.Stringer.
func (a EngagementAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known EngagementAction.
func (a EngagementAction) IsValid() bool {
	for _, candidate := range validEngagementActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// Points returns how many loyalty points the action is worth. Unknown
// actions earn nothing.
func (a EngagementAction) Points() int {
	return engagementPoints[a]
}

// ParseEngagementAction converts raw input into an EngagementAction.
func ParseEngagementAction(value string) (EngagementAction, error) {
	for _, candidate := range validEngagementActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid engagement action %q", value)
}
