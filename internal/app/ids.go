package app

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

func newUUID() string {
	return uuid.NewString()
}

const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// newBookingCode returns a short human-readable reference like "BR-7KQ2M4".
// The alphabet drops easily confused characters (0/O, 1/I/L).
func newBookingCode() string {
	var sb strings.Builder
	sb.WriteString("BR-")
	alphaLen := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, alphaLen)
		if err != nil {
			// crypto/rand failing is unrecoverable for codes; fall back to a UUID slice.
			return "BR-" + strings.ToUpper(uuid.NewString()[:6])
		}
		sb.WriteByte(codeAlphabet[n.Int64()])
	}
	return sb.String()
}
