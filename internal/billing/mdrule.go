package billing

import (
	"os"
	"strconv"
)

const (
	defaultHalfDayHours = 3.5
	defaultFullDayHours = 7.5
)

// MDRule maps aggregate worked hours to a recommended man-day value.
// The thresholds are a business-rule parameter, not a structural constant;
// setting both to the same value reproduces the single-threshold variant.
type MDRule struct {
	HalfDayHours float64
	FullDayHours float64
}

func DefaultMDRule() MDRule {
	return MDRule{
		HalfDayHours: defaultHalfDayHours,
		FullDayHours: defaultFullDayHours,
	}
}

// MDRuleFromEnv reads MD_HALF_DAY_HOURS and MD_FULL_DAY_HOURS, falling back
// to the defaults for unset or unparseable values.
func MDRuleFromEnv() MDRule {
	rule := DefaultMDRule()
	if v, err := strconv.ParseFloat(os.Getenv("MD_HALF_DAY_HOURS"), 64); err == nil && v > 0 {
		rule.HalfDayHours = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("MD_FULL_DAY_HOURS"), 64); err == nil && v > 0 {
		rule.FullDayHours = v
	}
	return rule
}

// Recommend is informational only; the final MD on a decision stays
// authoritative even when it diverges.
func (r MDRule) Recommend(totalHours float64) float64 {
	switch {
	case totalHours >= r.FullDayHours:
		return 1.0
	case totalHours >= r.HalfDayHours:
		return 0.5
	default:
		return 0
	}
}
