package ephemeris

import (
	"fmt"

	"github.com/luraaya/factengine/internal/domain"
)

// Provider constants
const (
	ProviderAnalytic = "analytic"
	ProviderMock     = "mock"
)

// NewEngine creates an ephemeris engine based on the provider name.
func NewEngine(provider string) (domain.EphemerisEngine, error) {
	switch provider {
	case ProviderAnalytic, "":
		return NewAnalyticEngine(), nil
	case ProviderMock:
		return NewMockEngine(), nil
	default:
		return nil, fmt.Errorf("unknown ephemeris provider: %s (valid options: analytic, mock)", provider)
	}
}
