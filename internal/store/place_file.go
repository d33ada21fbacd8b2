package store

import (
	"fmt"
	"io"
	"os"

	"github.com/luraaya/factengine/internal/domain"
	"gopkg.in/yaml.v3"
)

// PlacesFile is the YAML layout of a place list:
//
//	places:
//	  - place_id: ch-bern
//	    name: Bern
//	    country_code: CH
//	    lat: 46.948
//	    lon: 7.4474
//	    tz_iana: Europe/Zurich
type PlacesFile struct {
	Places []domain.Place `yaml:"places"`
}

// LoadPlacesFile reads a YAML place list from path.
func LoadPlacesFile(path string) ([]domain.Place, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodePlaces(f)
}

// DecodePlaces reads a YAML place list. Unknown keys are rejected so typos
// such as "tz" for "tz_iana" fail loudly instead of producing zoneless places.
func DecodePlaces(r io.Reader) ([]domain.Place, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var pf PlacesFile
	if err := dec.Decode(&pf); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode places: %w", err)
	}
	return pf.Places, nil
}

// EncodePlaces writes places in the layout DecodePlaces reads.
func EncodePlaces(w io.Writer, places []domain.Place) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(PlacesFile{Places: places}); err != nil {
		return err
	}
	return enc.Close()
}
