// internal/daily/daily.go
//
// Deterministic per-day seeds so every player sees the same board on a
// given date. The seed is HMAC-SHA256(salt, YYYY-MM-DD) folded to two
// uint64 halves, suitable for rand.NewPCG.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns the PCG seed pair for the day containing t.
func Seed(t time.Time, salt string) (uint64, uint64) {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(t)))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])
}
