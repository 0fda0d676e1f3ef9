// Package testdata generates collision-resistant user data for checks.
package testdata

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// phoneBase is the fixed 10-digit base; every generated number starts with 9.
const phoneBase = 9_000_000_000

// suffixMod caps the variable part at 9 digits so the result never overflows
// into an 11th digit.
const suffixMod = 1_000_000_000

// PhoneNumber returns a 10-digit phone number starting with 9.
// Uniqueness is probabilistic: a random 128-bit UUID folded to 64 bits is
// combined with a microsecond timestamp and reduced modulo 10^9. Not
// cryptographically secure and not reproducible across runs.
func PhoneNumber() int64 {
	u := uuid.New()
	hi := binary.BigEndian.Uint64(u[:8])
	lo := binary.BigEndian.Uint64(u[8:])
	entropy := hi ^ lo

	ts := uint64(time.Now().UnixMicro())
	suffix := (entropy + ts) % suffixMod

	return phoneBase + int64(suffix)
}

// Email returns a unique email address of the form
// uservet_<32 hex chars>_<microseconds>@example.com.
func Email() string {
	u := uuid.New()
	return fmt.Sprintf("uservet_%x_%d@example.com", u[:], time.Now().UnixMicro())
}
