package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// DateLayout is the month/day/year layout used by every worksheet date.
const DateLayout = "1/2/2006"

// ParseDate parses a worksheet date.
func ParseDate(v string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(v))
}

// SSNDigits strips separators from a social security number.
func SSNDigits(ssn string) string {
	return NormalizePhone(ssn)
}

// SSNDigest is the one-way form of a social security number that is stored
// and compared; the plaintext never leaves the record.
type SSNDigest struct {
	Full     string
	LastFour string
}

// DigestSSN hashes the full number and its last four digits separately.
func DigestSSN(ssn string) SSNDigest {
	digits := SSNDigits(ssn)
	last := digits
	if len(last) > 4 {
		last = last[len(last)-4:]
	}
	return SSNDigest{
		Full:     hashHex(digits),
		LastFour: hashHex(last),
	}
}

// IdentityKey identifies a person for locking. Two submissions for the same
// SSN share a key.
func IdentityKey(r *Record) string {
	return DigestSSN(r.Get(SocialSecurityNumber)).Full
}

func hashHex(v string) string {
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}
