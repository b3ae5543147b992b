package listing

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// StatusActive is the only preference status the engine acts on; the caller
// filters the rest out before a run.
const StatusActive = "active"

// Preference is a user's standing search criteria. Make/model/year/price are
// mandatory criteria; location, fuel type and transmission are soft ones.
// An empty or "Any" value matches everything for that field.
type Preference struct {
	ID           string `json:"id,omitempty" mapstructure:"id"`
	UserID       string `json:"user_id,omitempty" mapstructure:"user_id"`
	Make         string `json:"make,omitempty" mapstructure:"make"`
	Model        string `json:"model,omitempty" mapstructure:"model"`
	MinYear      int    `json:"min_year,omitempty" mapstructure:"min_year"`
	MaxYear      int    `json:"max_year,omitempty" mapstructure:"max_year"`
	MinPrice     int    `json:"min_price,omitempty" mapstructure:"min_price"`
	MaxPrice     int    `json:"max_price,omitempty" mapstructure:"max_price"`
	Location     string `json:"location,omitempty" mapstructure:"location"`
	FuelType     string `json:"fuel_type,omitempty" mapstructure:"fuel_type"`
	Transmission string `json:"transmission,omitempty" mapstructure:"transmission"`
	Status       string `json:"status,omitempty" mapstructure:"status"`
}

// YearRange returns the preference's year bounds with open ends widened to
// cover any listing year.
func (p *Preference) YearRange() (int, int) {
	min, max := p.MinYear, p.MaxYear
	if max == 0 {
		max = 9999
	}
	return min, max
}

// PriceRange returns the preference's price bounds with open ends widened to
// cover any listing price.
func (p *Preference) PriceRange() (int, int) {
	min, max := p.MinPrice, p.MaxPrice
	if max == 0 {
		max = 9999999
	}
	return min, max
}

// LoadPreferences reads preference records from a JSON file and assigns a
// fresh ID to any record that arrived without one.
func LoadPreferences(path string) ([]*Preference, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening preferences: %w", err)
	}
	defer file.Close()

	var raw []map[string]any
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding preferences %q: %w", path, err)
	}

	prefs := make([]*Preference, 0, len(raw))
	for i, record := range raw {
		p := &Preference{}
		if err := decodeWeakly(record, p); err != nil {
			return nil, fmt.Errorf("preferences %q record %d: %w", path, i, err)
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		prefs = append(prefs, p)
	}

	return prefs, nil
}

// Active returns the preferences whose status is "active".
func Active(prefs []*Preference) []*Preference {
	active := make([]*Preference, 0, len(prefs))
	for _, p := range prefs {
		if p.Status == StatusActive {
			active = append(active, p)
		}
	}
	return active
}
