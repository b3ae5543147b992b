package matching

import "strings"

// Criterion enumerates the matching dimensions. Make through Price are
// mandatory: failing one excludes the pair. Location, FuelType and
// Transmission are soft: they are recorded in the match details but never
// exclude a candidate.
type Criterion int

const (
	CriterionMake Criterion = iota
	CriterionModel
	CriterionYear
	CriterionPrice
	CriterionLocation
	CriterionFuelType
	CriterionTransmission
)

func (c Criterion) String() string {
	switch c {
	case CriterionMake:
		return "make"
	case CriterionModel:
		return "model"
	case CriterionYear:
		return "year"
	case CriterionPrice:
		return "price"
	case CriterionLocation:
		return "location"
	case CriterionFuelType:
		return "fuel_type"
	case CriterionTransmission:
		return "transmission"
	default:
		return "unknown"
	}
}

// Mandatory reports whether failing this criterion excludes the pair.
func (c Criterion) Mandatory() bool {
	switch c {
	case CriterionMake, CriterionModel, CriterionYear, CriterionPrice:
		return true
	default:
		return false
	}
}

// Details records the per-criterion outcome for a match. Every mandatory
// field is true by construction; soft fields may be false.
type Details struct {
	Make         bool `json:"make_match"`
	Model        bool `json:"model_match"`
	Year         bool `json:"year_match"`
	Price        bool `json:"price_match"`
	Location     bool `json:"location_match"`
	FuelType     bool `json:"fuel_type_match"`
	Transmission bool `json:"transmission_match"`
}

// ByCriterion returns the details keyed by criterion, for reporting.
func (d Details) ByCriterion() map[Criterion]bool {
	return map[Criterion]bool{
		CriterionMake:         d.Make,
		CriterionModel:        d.Model,
		CriterionYear:         d.Year,
		CriterionPrice:        d.Price,
		CriterionLocation:     d.Location,
		CriterionFuelType:     d.FuelType,
		CriterionTransmission: d.Transmission,
	}
}

// wildcard reports whether a preference value matches everything.
func wildcard(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "" || v == "any"
}

// containsEitherWay is the containment rule for make/model/location: two
// values match when either lower-cased string contains the other.
func containsEitherWay(a, b string) bool {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// normalizeLocation extracts the city segment from a "Region: City" string,
// else returns the whole string lower-cased and trimmed.
func normalizeLocation(location string) string {
	if idx := strings.Index(location, ":"); idx != -1 {
		location = location[idx+1:]
	}
	return strings.ToLower(strings.TrimSpace(location))
}
