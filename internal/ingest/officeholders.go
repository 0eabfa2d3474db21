package ingest

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Officeholder is one roster entry. The member API only covers Congress, so
// presidents and governors come from this versioned configuration file.
// Entries marked current flip the is_active flag after the member sync.
type Officeholder struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	State     string `yaml:"state"`
	Party     string `yaml:"party"`
	Role      string `yaml:"role"`
	Current   bool   `yaml:"current"`
}

// Roster is the full officeholder configuration.
type Roster struct {
	Officeholders []Officeholder `yaml:"officeholders"`
}

// LoadRoster reads the officeholder roster from a YAML file.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "roster: read %s", path)
	}

	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrapf(err, "roster: parse %s", path)
	}

	for i, o := range r.Officeholders {
		if o.FirstName == "" || o.LastName == "" || o.State == "" || o.Role == "" {
			return nil, eris.Errorf("roster: entry %d is missing a required field", i)
		}
	}

	return &r, nil
}

// Current returns the entries currently in office.
func (r *Roster) Current() []Officeholder {
	var current []Officeholder
	for _, o := range r.Officeholders {
		if o.Current {
			current = append(current, o)
		}
	}
	return current
}

// Role filters entries by role ("President", "Governor").
func (r *Roster) Role(role string) []Officeholder {
	var matched []Officeholder
	for _, o := range r.Officeholders {
		if o.Role == role {
			matched = append(matched, o)
		}
	}
	return matched
}
