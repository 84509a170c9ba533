package postgres

import (
	"crypto/rand"
	"io"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/iho/gotransfer/internal/usecase"
)

// ULIDGenerator issues transfer and history entry ids. Ids share the clock of
// the transfer they belong to, so they sort in creation order.
type ULIDGenerator struct {
	clock usecase.Clock

	mu      sync.Mutex
	entropy io.Reader
}

// NewULIDGenerator creates a ULIDGenerator stamping ids with clock.
func NewULIDGenerator(clock usecase.Clock) *ULIDGenerator {
	return &ULIDGenerator{
		clock:   clock,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Generate returns the next id. Ids generated within the same millisecond are
// strictly increasing.
func (g *ULIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.clock.Now()), g.entropy).String()
}
