package reconcile

import (
	"crypto/subtle"

	"github.com/rotisserie/eris"

	"github.com/solandes-viajes/cost-console/internal/model"
)

// ErrReviewLocked is returned when clearing a reviewed flag without the
// correct unlock secret. The persisted record stays untouched.
var ErrReviewLocked = eris.New("reconcile: line is locked by review sign-off")

// Gate enforces the review lock: once a line is marked reviewed,
// flipping the flag back off requires the configured shared secret.
// The store's write path itself accepts any flag change; callers must
// run the gate before writing.
type Gate struct {
	secret string
}

// NewGate creates a gate with the configured unlock secret. An empty
// secret means unlocking is disabled entirely.
func NewGate(secret string) Gate {
	return Gate{secret: secret}
}

// Check validates a patch against the line's current record. Only the
// reviewed true->false transition is gated; everything else passes.
func (g Gate) Check(current *model.OverrideRecord, patch model.OverridePatch, providedSecret string) error {
	if patch.Reviewed == nil || *patch.Reviewed {
		return nil
	}
	if current == nil || !current.Reviewed {
		return nil
	}
	if g.secret == "" {
		return ErrReviewLocked
	}
	if subtle.ConstantTimeCompare([]byte(providedSecret), []byte(g.secret)) != 1 {
		return ErrReviewLocked
	}
	return nil
}
