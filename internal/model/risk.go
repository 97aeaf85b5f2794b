package model

// RiskThreshold is the score above which a record is High risk. A score of
// exactly 50 is Low.
const RiskThreshold = 50

type Tier string

const (
	TierHigh Tier = "High"
	TierLow  Tier = "Low"
)

func TierOf(score int) Tier {
	if score > RiskThreshold {
		return TierHigh
	}
	return TierLow
}

func (t Tier) Label() string { return string(t) + " Risk" }

// Color is the accent used for the tier on the dashboard ring and history rows.
func (t Tier) Color() string {
	if t == TierHigh {
		return "#DC2626"
	}
	return "#10B981"
}
