// Package listing defines the in-memory records the engine operates on:
// scraped vehicle listings, standing user preferences, and the notified
// markers that prevent repeat alerts. Records arrive already validated from
// the retrieval subsystem and are immutable within a run.
package listing

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Listing is one scraped vehicle-for-sale record. The zero value of an
// optional field means the source did not provide it.
type Listing struct {
	Source       string    `json:"source,omitempty" mapstructure:"source"`
	Make         string    `json:"make,omitempty" mapstructure:"make"`
	Model        string    `json:"model,omitempty" mapstructure:"model"`
	Year         int       `json:"year,omitempty" mapstructure:"year"`
	Price        int       `json:"price,omitempty" mapstructure:"price"`
	Mileage      int       `json:"mileage,omitempty" mapstructure:"mileage"`
	Location     string    `json:"location,omitempty" mapstructure:"location"`
	FuelType     string    `json:"fuel_type,omitempty" mapstructure:"fuel_type"`
	Transmission string    `json:"transmission,omitempty" mapstructure:"transmission"`
	URL          string    `json:"url,omitempty" mapstructure:"url"`
	ScrapedAt    time.Time `json:"scraped_at,omitempty" mapstructure:"scraped_at"`

	// NotifiedTo carries externally supplied markers: user IDs this listing
	// has already been alerted to. The matching engine skips those pairs.
	NotifiedTo []string `json:"notified_to,omitempty" mapstructure:"notified_to"`
}

// ID returns the stable identity of the listing: source|url when the source
// exposed a URL, otherwise a deterministic UUID over the identifying fields.
func (l *Listing) ID() string {
	if l.URL != "" {
		return l.Source + "|" + l.URL
	}

	seed := fmt.Sprintf("%s|%s|%s|%d|%d|%d", l.Source, l.Make, l.Model, l.Year, l.Price, l.Mileage)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed)).String()
}

// NotifiedToUser reports whether this listing was already alerted to the user.
func (l *Listing) NotifiedToUser(userID string) bool {
	for _, id := range l.NotifiedTo {
		if id == userID {
			return true
		}
	}
	return false
}

// Listings is the collection handed to the engine once per run.
type Listings struct {
	Items []*Listing
}

func (ls *Listings) Len() int {
	return len(ls.Items)
}

func (ls *Listings) FindByID(id string) *Listing {
	for _, l := range ls.Items {
		if l.ID() == id {
			return l
		}
	}
	return nil
}

// Exclude removes listings whose ID is in targets and returns the removed IDs.
func (ls *Listings) Exclude(targets []string) []string {
	var excluded []string
	for _, target := range targets {
		for idx, l := range ls.Items {
			if l.ID() == target {
				ls.RemoveByIndex(idx)
				excluded = append(excluded, target)
				break
			}
		}
	}
	return excluded
}

// RemoveByIndex removes a listing from the collection. Does not preserve order.
func (ls *Listings) RemoveByIndex(idx int) {
	ls.Items[idx] = ls.Items[len(ls.Items)-1]
	ls.Items = ls.Items[:len(ls.Items)-1]
}

// DumpToTmpFile writes the collection as indented JSON to a temp file and
// returns its path.
func (ls *Listings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "listings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ls); err != nil {
		return "", err
	}
	return file.Name(), nil
}
