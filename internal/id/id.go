package id

import (
	cryptorand "crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy io.Reader = ulid.Monotonic(cryptorand.Reader, 0)
)

// New returns a ULID for now. IDs created within the same millisecond keep
// increasing, so decision ids sort in creation order.
func New() string {
	return NewAt(time.Now().UTC())
}

func NewAt(ts time.Time) string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(ts), entropy).String()
}

// Time extracts the timestamp encoded in a ULID string.
func Time(value string) (time.Time, error) {
	parsed, err := ulid.ParseStrict(value)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()).UTC(), nil
}
