package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainDefinitions is the domain prefix for definitions fingerprints.
// The version suffix allows future algorithm migration.
const DomainDefinitions = "openscm-units/definitions/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content-addressed identity of a definitions
// document. Two documents that compile to the same units, aliases and
// context rules have the same fingerprint regardless of declaration order.
func Fingerprint(d *Definitions) (string, error) {
	sorted := *d
	sorted.Units = append([]UnitSpec(nil), d.Units...)
	sorted.Aliases = append([]AliasSpec(nil), d.Aliases...)
	sorted.Contexts = append([]ContextSpec(nil), d.Contexts...)
	sorted.Metrics = append([]MetricSpec(nil), d.Metrics...)
	sorted.Mixtures = append([]MixtureSpec(nil), d.Mixtures...)
	sorted.Sort()

	canonical, err := MarshalCanonical(sorted.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDefinitions, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFingerprint(d *Definitions) string {
	fp, err := Fingerprint(d)
	if err != nil {
		panic(err)
	}
	return fp
}
