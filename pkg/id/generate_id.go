package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewApplicationNo returns a human-readable application number of the form
// LA-YYYYMM-XXXXXX. Uniqueness is enforced by the DB unique index, not here.
func NewApplicationNo(at time.Time) string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		n = big.NewInt(at.UnixNano() % 1_000_000)
	}
	return fmt.Sprintf("LA-%s-%06d", at.UTC().Format("200601"), n.Int64())
}
