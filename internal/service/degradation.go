package service

import "github.com/luraaya/factengine/internal/domain"

// Decide maps the availability of an exact birth time to a precision mode.
// The rule is binary on purpose: there is no partial precision tier.
func Decide(hasExactTime bool) domain.DegradationDecision {
	if hasExactTime {
		return domain.DegradationDecision{
			Mode:         domain.ModeFull,
			HasExactTime: true,
			Reason:       domain.ReasonBirthTimeProvided,
		}
	}
	return domain.DegradationDecision{
		Mode:         domain.ModeDegraded,
		HasExactTime: false,
		Reason:       domain.ReasonBirthTimeMissing,
	}
}
