// Package ai defines the optional commentary layer: a provider that turns a
// user's top match into a short human-readable verdict. It lives outside the
// engine; a run works identically with no commentator configured.
package ai

import (
	"context"

	"github.com/autosniper/autosniper/internal/matching"
)

// Commentary is the provider's verdict on a single match.
type Commentary struct {
	Verdict    string
	Highlights []string
	Raw        string
}

// Commentator produces commentary for a match. Implementations must treat
// failures as non-fatal; callers degrade to no commentary.
type Commentator interface {
	Comment(ctx context.Context, match *matching.Match) (*Commentary, error)
}
