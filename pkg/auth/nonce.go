package auth

import (
	"math/rand/v2"
	"strconv"
	"sync"
	"time"
)

// NonceSource produces single-use nonces for MAC signing.
type NonceSource interface {
	Nonce() string
}

// Random is the subset of *rand.Rand the nonce generator needs.
type Random interface {
	IntN(n int) int
}

// Nonce layout expected by the backend.
const (
	NonceJitterMin    = 700
	NonceJitterMax    = 900
	NonceSuffixLength = 8
	nonceAlphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// TimeNonce builds nonces of the form "<unix millis + jitter>:<8 base-36 chars>".
type TimeNonce struct {
	Now  func() time.Time
	Rand Random

	mu sync.Mutex
}

// NewNonceSource returns a TimeNonce using the wall clock. A nil Random uses the
// package-level generator.
func NewNonceSource(r Random) *TimeNonce {
	return &TimeNonce{Now: time.Now, Rand: r}
}

// NewSeededNonceSource returns a reproducible nonce source for a fixed clock.
func NewSeededNonceSource(seed uint64, now func() time.Time) *TimeNonce {
	return &TimeNonce{Now: now, Rand: rand.New(rand.NewPCG(seed, seed))}
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

// Nonce implements NonceSource.
func (n *TimeNonce) Nonce() string {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	var r Random = globalRandom{}
	if n.Rand != nil {
		r = n.Rand
	}

	// *rand.Rand is not safe for concurrent use.
	n.mu.Lock()
	defer n.mu.Unlock()

	ts := now().UnixMilli() + int64(NonceJitterMin+r.IntN(NonceJitterMax-NonceJitterMin+1))
	suffix := make([]byte, NonceSuffixLength)
	for i := range suffix {
		suffix[i] = nonceAlphabet[r.IntN(len(nonceAlphabet))]
	}
	return strconv.FormatInt(ts, 10) + ":" + string(suffix)
}

// FixedNonce always returns the same value. Only useful for tests and the
// `sign --nonce` debug command.
type FixedNonce string

// Nonce implements NonceSource.
func (f FixedNonce) Nonce() string { return string(f) }
