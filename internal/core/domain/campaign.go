package domain

import "time"

// Status is the delivery state of a campaign.
type Status string

const (
	StatusActive        Status = "ACTIVE"
	StatusPausedBudget  Status = "PAUSED_BUDGET"
	StatusPausedDaypart Status = "PAUSED_DAYPART"
	StatusInactive      Status = "INACTIVE"
)

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPausedBudget, StatusPausedDaypart, StatusInactive:
		return true
	}
	return false
}

// Reason explains a recorded status transition.
type Reason string

const (
	ReasonBudgetExhausted  Reason = "budget_exhausted"
	ReasonBudgetAvailable  Reason = "budget_available"
	ReasonDaypartingClosed Reason = "dayparting_window_closed"
	ReasonDaypartingOpen   Reason = "dayparting_window_open"
	ReasonManualDisable    Reason = "manual_disable"
	ReasonManualEnable     Reason = "manual_enable"
)

// Campaign represents an advertising campaign. Delivery state is derived
// from its brand's budget and its dayparting windows; ManualEnabled is the
// operator kill switch and overrides both signals.
type Campaign struct {
	ID            int64
	BrandID       int64
	Name          string
	Status        Status
	ManualEnabled bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NextStatus returns the state the automatic rules assign to a campaign
// given whether its brand has budget left and whether the current instant
// falls inside a dayparting window. Budget exhaustion wins when both
// signals are down. INACTIVE is terminal for the automatic rules; only a
// manual enable leaves it.
func NextStatus(current Status, budgetOK, daypartOK bool) Status {
	if current == StatusInactive {
		return StatusInactive
	}
	switch {
	case !budgetOK:
		return StatusPausedBudget
	case !daypartOK:
		return StatusPausedDaypart
	default:
		return StatusActive
	}
}

// TransitionReason maps a realized transition to the reason recorded in the
// audit trail. Transitions out of INACTIVE only happen on a manual enable.
func TransitionReason(from, to Status) Reason {
	if from == StatusInactive {
		return ReasonManualEnable
	}
	switch to {
	case StatusInactive:
		return ReasonManualDisable
	case StatusPausedBudget:
		return ReasonBudgetExhausted
	case StatusPausedDaypart:
		return ReasonDaypartingClosed
	default:
		if from == StatusPausedDaypart {
			return ReasonDaypartingOpen
		}
		return ReasonBudgetAvailable
	}
}

// StatusChange is one audit record of a realized campaign transition.
type StatusChange struct {
	ID         int64
	CampaignID int64
	From       Status
	To         Status
	Reason     Reason
	OccurredAt time.Time
}
