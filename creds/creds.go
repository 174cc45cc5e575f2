package creds

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// PasswordAlphabet avoids ambiguous characters (no I, O, 0, 1) so generated
// passwords survive being read off an email and retyped.
const PasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// PasswordLength is the length of generated attendee passwords.
const PasswordLength = 6

// SlugLength is the length of public-profile slugs.
const SlugLength = 12

// GeneratePassword returns a random password drawn from PasswordAlphabet.
func GeneratePassword() (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(PasswordAlphabet)))
	for i := 0; i < PasswordLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		b.WriteByte(PasswordAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// GenerateSlug returns an opaque 12-char hex token for shareable profile
// URLs.
func GenerateSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:SlugLength]
}

// LoginID derives the display login id shown in credential emails. It is
// based on the attendee's stable row id, not the mutable row count the old
// sheet used.
func LoginID(attendeeID int64) string {
	return fmt.Sprintf("SMPK%d", 1000+attendeeID)
}

// ParseLoginID is the inverse of LoginID. It reports false for anything
// that is not a well-formed login id, such as a plain email address.
func ParseLoginID(s string) (int64, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "SMPK") {
		return 0, false
	}
	n, err := strconv.ParseInt(s[len("SMPK"):], 10, 64)
	if err != nil || n <= 1000 {
		return 0, false
	}
	return n - 1000, true
}
