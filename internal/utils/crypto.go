// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
)

// inviteCharset drops 0/O/1/I so codes survive being read aloud.
const inviteCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func GenerateRandomString(charset string, length int) (string, error) {
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

func GenerateInviteCode() (string, error) {
	return GenerateRandomString(inviteCharset, 8)
}

func HashString(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}
