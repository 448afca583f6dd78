package hasher

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// SumBytes возвращает SHA-256 хэш в виде hex.
func SumBytes(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// Verify сравнивает checksum с хэшем b за постоянное время.
func Verify(b []byte, checksum string) bool {
	return subtle.ConstantTimeCompare([]byte(SumBytes(b)), []byte(checksum)) == 1
}
