package scoring

// Grade is the closed letter bucket derived from an overall score. GradeF is
// reserved for suspicious listings and scores outside [0, 100].
type Grade int

const (
	GradeF Grade = iota
	GradeD
	GradeC
	GradeB
	GradeA
	GradeAPlus
)

func (g Grade) String() string {
	switch g {
	case GradeAPlus:
		return "A+"
	case GradeA:
		return "A"
	case GradeB:
		return "B"
	case GradeC:
		return "C"
	case GradeD:
		return "D"
	default:
		return "F"
	}
}

// MarshalText renders the grade as its letter so results serialize readably.
func (g Grade) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// GradeFor maps an overall score to its grade. Bands are half-open at the
// top so 89.9 is still an A while 90.0 is an A+.
func GradeFor(score float64) Grade {
	switch {
	case score < 0 || score > 100:
		return GradeF
	case score >= 90:
		return GradeAPlus
	case score >= 80:
		return GradeA
	case score >= 70:
		return GradeB
	case score >= 60:
		return GradeC
	default:
		return GradeD
	}
}
