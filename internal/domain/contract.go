package domain

const SchemaVersionV1 = "v1"

// FactsContract is the versioned output of a compute call. FactsHash commits
// to the normalized input, the calc version, and Facts.
type FactsContract struct {
	SchemaVersion    string              `json:"schema_version"`
	CalcVersion      string              `json:"calc_version"`
	EphemerisVersion string              `json:"ephemeris_version"`
	TZDataVersion    string              `json:"tzdata_version"`
	FactsHash        string              `json:"facts_hash"`
	HasBirthTime     bool                `json:"has_birth_time"`
	Precision        DegradationDecision `json:"precision"`
	Facts            Facts               `json:"facts"`
	// Signals is reserved for derived signals and is always empty in v1. It
	// sits outside Facts so it never enters the hash.
	Signals          []any               `json:"signals"`
	Errors           []ContractError     `json:"errors"`
}

type ContractError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Facts is the hashed part of a contract. Exactly one of Instant and Interval
// is set, depending on the precision mode; the same holds for Bodies and
// Provisional.
type Facts struct {
	EphemerisVersion string                 `json:"ephemeris_version"`
	EngineVersion    string                 `json:"engine_version"`
	Precision        DegradationDecision    `json:"precision"`
	Instant          *InstantFacts          `json:"instant,omitempty"`
	Interval         *IntervalFacts         `json:"interval,omitempty"`
	Bodies           map[Body]BodyPosition  `json:"bodies,omitempty"`
	Provisional      map[Body]BodyStability `json:"provisional,omitempty"`
	Houses           *HouseFacts            `json:"houses,omitempty"`
}

type InstantFacts struct {
	UTC         string  `json:"utc"`
	JulianDayUT float64 `json:"jd_ut"`
}

type IntervalFacts struct {
	StartUTC         string  `json:"start_utc"`
	EndUTC           string  `json:"end_utc"`
	JulianDayStartUT float64 `json:"jd_start_ut"`
	JulianDayEndUT   float64 `json:"jd_end_ut"`
}

type BodyPosition struct {
	Lon        float64 `json:"lon"`
	Lat        float64 `json:"lat"`
	SpeedLon   float64 `json:"speed_lon"`
	Sign       Sign    `json:"sign"`
	Retrograde bool    `json:"retrograde"`
}

// BodyStability describes a body whose exact position is unknown because the
// birth minute is. Only its zodiac sign at both interval ends is committed.
type BodyStability struct {
	SignStart Sign            `json:"sign_start"`
	SignEnd   Sign            `json:"sign_end"`
	Stability StabilityResult `json:"stability"`
}

type HouseFacts struct {
	System HouseSystem `json:"system"`
	Cusps  []float64   `json:"cusps"`
	Asc    float64     `json:"asc"`
	MC     float64     `json:"mc"`
}
