package auth

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type constRandom struct{ pick func(n int) int }

func (c constRandom) IntN(n int) int { return c.pick(n) }

var nonceShape = regexp.MustCompile(`^\d+:[0-9A-Z]{8}$`)

func TestTimeNonce_Bounds(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)

	tests := []struct {
		name       string
		pick       func(n int) int
		wantTS     int64
		wantSuffix string
	}{
		{name: "lowest jitter", pick: func(int) int { return 0 }, wantTS: 1_700_000_000_700, wantSuffix: "00000000"},
		{name: "highest jitter", pick: func(n int) int { return n - 1 }, wantTS: 1_700_000_000_900, wantSuffix: "ZZZZZZZZ"},
		{name: "middle", pick: func(n int) int { return n / 2 }, wantTS: 1_700_000_000_800, wantSuffix: "IIIIIIII"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &TimeNonce{Now: func() time.Time { return fixed }, Rand: constRandom{pick: tt.pick}}
			nonce := src.Nonce()
			require.Regexp(t, nonceShape, nonce)

			parts := strings.SplitN(nonce, ":", 2)
			ts, err := strconv.ParseInt(parts[0], 10, 64)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTS, ts)
			assert.Equal(t, tt.wantSuffix, parts[1])
		})
	}
}

func TestTimeNonce_Seeded(t *testing.T) {
	now := func() time.Time { return time.UnixMilli(1_000) }

	a := NewSeededNonceSource(42, now)
	b := NewSeededNonceSource(42, now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Nonce(), b.Nonce())
	}
}

func TestTimeNonce_Defaults(t *testing.T) {
	before := time.Now().UnixMilli()
	nonce := NewNonceSource(nil).Nonce()
	after := time.Now().UnixMilli()

	require.Regexp(t, nonceShape, nonce)
	ts, err := strconv.ParseInt(strings.SplitN(nonce, ":", 2)[0], 10, 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ts, before+NonceJitterMin)
	assert.LessOrEqual(t, ts, after+NonceJitterMax)
}

func TestFixedNonce(t *testing.T) {
	assert.Equal(t, "1:ABCDEFGH", FixedNonce("1:ABCDEFGH").Nonce())
}
