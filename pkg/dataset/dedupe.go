package dataset

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/aretw0/ahkcurate/pkg/core"
)

// HashResponse returns the hex SHA-256 digest of a response body.
func HashResponse(response string) string {
	sum := sha256.Sum256([]byte(response))
	return hex.EncodeToString(sum[:])
}

// Dedupe keeps the first record for each distinct response and records the
// response digest under the "sha256" metadata key. Input records are not
// modified.
func Dedupe(records []core.Record) []core.Record {
	seen := make(map[string]struct{}, len(records))
	unique := make([]core.Record, 0, len(records))
	for _, rec := range records {
		digest := HashResponse(rec.Response)
		if _, dup := seen[digest]; dup {
			continue
		}
		seen[digest] = struct{}{}

		md := rec.Metadata.Clone()
		md["sha256"] = digest
		unique = append(unique, core.Record{Prompt: rec.Prompt, Response: rec.Response, Metadata: md})
	}
	return unique
}
