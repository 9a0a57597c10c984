package service

import (
	"crypto/rand"
	"math/big"

	"github.com/AlShabiliBadia/Shorter-links/internal/model"
)

const shortCodeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CodeGenerator produces candidate short codes. Candidates are not unique; the links table
// decides.
type CodeGenerator func() (string, error)

var alphabetSize = big.NewInt(int64(len(shortCodeAlphabet)))

// GenerateShortCode draws model.ShortCodeLength symbols uniformly from [0-9a-zA-Z].
func GenerateShortCode() (string, error) {
	code := make([]byte, model.ShortCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		code[i] = shortCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
