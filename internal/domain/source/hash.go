package source

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// normalize flattens a card's content for hashing: lowercased, trimmed,
// unix line endings, fields joined with newlines so adjacent fields
// can't run together.
func normalize(c ParsedCard) string {
	clean := func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimSpace(s)
		return strings.ReplaceAll(s, "\r\n", "\n")
	}
	return strings.Join([]string{clean(c.Question), clean(c.Answer), clean(c.Context)}, "\n")
}

// ContentHash returns the hex SHA-256 of the normalized card content.
// Two cards with the same hash are the same card as far as import
// deduplication is concerned.
func ContentHash(c ParsedCard) string {
	sum := sha256.Sum256([]byte(normalize(c)))
	return hex.EncodeToString(sum[:])
}
