package domain

// ComputeRequest is the v1 request body accepted by the compute endpoint.
type ComputeRequest struct {
	Language   string     `json:"language"`
	PlanTier   string     `json:"plan_tier"`
	BirthDate  string     `json:"birth_date"`
	BirthTime  *string    `json:"birth_time"`
	BirthPlace BirthPlace `json:"birth_place"`
	Name       string     `json:"name"`
}

type BirthPlace struct {
	PlaceID     string   `json:"place_id"`
	Name        string   `json:"name"`
	CountryCode string   `json:"country_code"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	TZIANA      string   `json:"tz_iana,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (p BirthPlace) HasCoordinates() bool {
	return p.Lat != nil && p.Lon != nil
}

// HasBirthTime reports whether a clock time was supplied. An empty string
// counts as absent.
func (r ComputeRequest) HasBirthTime() bool {
	return r.BirthTime != nil && *r.BirthTime != ""
}

// NormalizedInput is the part of a request that facts are a function of.
// Display fields (name, language, plan tier, place label) are excluded so
// they can never influence the facts hash.
type NormalizedInput struct {
	BirthDate  string          `json:"birth_date"`
	BirthTime  *string         `json:"birth_time"`
	BirthPlace NormalizedPlace `json:"birth_place"`
}

type NormalizedPlace struct {
	PlaceID string   `json:"place_id"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	TZIANA  string   `json:"tz_iana"`
}

const (
	LanguageDE = "de"
	LanguageEN = "en"
	LanguageFR = "fr"

	PlanBase    = "base"
	PlanPremium = "premium"
)

func ValidLanguage(l string) bool {
	switch l {
	case LanguageDE, LanguageEN, LanguageFR:
		return true
	}
	return false
}

func ValidPlanTier(p string) bool {
	switch p {
	case PlanBase, PlanPremium:
		return true
	}
	return false
}
