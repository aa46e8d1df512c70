package lib

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const skuAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateSKU builds "<first 3 alphanumerics of name>-<random suffix>", e.g. "SON-7K2QX".
// Names without letters or digits get the "PRD" prefix.
func GenerateSKU(name string, suffixLength int) (string, error) {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, strings.ToUpper(name))
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	if prefix == "" {
		prefix = "PRD"
	}

	if suffixLength < 1 {
		return prefix, nil
	}

	b := make([]byte, suffixLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate sku: %w", err)
	}
	for i := range b {
		b[i] = skuAlphabet[int(b[i])%len(skuAlphabet)]
	}

	return prefix + "-" + string(b), nil
}
