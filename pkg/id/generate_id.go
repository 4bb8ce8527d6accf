package id

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewDepositAddress returns a placeholder custody deposit address for the
// given blockchain. The custody provider overwrites it once the real
// address is provisioned.
func NewDepositAddress(blockchain string) string {
	b := make([]byte, 20)
	_, _ = rand.Read(b)
	if blockchain == "bitcoin" {
		return "bc1q" + hex.EncodeToString(b)
	}
	return "0x" + hex.EncodeToString(b)
}
