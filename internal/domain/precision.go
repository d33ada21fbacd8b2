package domain

type PrecisionMode string

const (
	ModeFull     PrecisionMode = "FULL"
	ModeDegraded PrecisionMode = "DEGRADED"
)

type DegradationReason string

const (
	ReasonBirthTimeProvided DegradationReason = "BIRTH_TIME_PROVIDED"
	ReasonBirthTimeMissing  DegradationReason = "BIRTH_TIME_MISSING"
)

// DegradationDecision records which precision mode a computation ran in.
type DegradationDecision struct {
	Mode         PrecisionMode     `json:"mode"`
	HasExactTime bool              `json:"has_exact_time"`
	Reason       DegradationReason `json:"reason"`
}

type StabilityReason string

const (
	StableOverInterval    StabilityReason = "STABLE_OVER_INTERVAL"
	ChangesWithinInterval StabilityReason = "CHANGES_WITHIN_INTERVAL"
	EvaluationError       StabilityReason = "EVALUATION_ERROR"
)

// StabilityResult says whether a derived signal keeps its value across a
// day interval. ErrorKind is set only when Reason is EvaluationError.
type StabilityResult struct {
	Stable    bool            `json:"stable"`
	Reason    StabilityReason `json:"reason"`
	ErrorKind string          `json:"error_kind,omitempty"`
}

// Code renders the reason as a single token, e.g. "EVALUATION_ERROR:panic".
func (r StabilityResult) Code() string {
	if r.Reason == EvaluationError && r.ErrorKind != "" {
		return string(r.Reason) + ":" + r.ErrorKind
	}
	return string(r.Reason)
}
