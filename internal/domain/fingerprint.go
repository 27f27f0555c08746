package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Payload is the schema-less content of a data entry: a map of string keys to
// JSON-like values (string, number, bool, nil, nested map, array).
type Payload map[string]any

// Fingerprint derives the deduplication hash for a data entry:
// SHA-256 over dataset id concatenated with the canonical JSON of the payload,
// rendered as 64 lowercase hex characters.
//
// The function is pure: no randomness, no timestamps. Two payloads with the
// same key/value content produce the same fingerprint regardless of key
// order, and the same payload in different datasets produces different
// fingerprints. Empty payloads are not rejected here; that is the ingest
// layer's validation concern.
func Fingerprint(datasetID uuid.UUID, payload Payload) (string, error) {
	canonical, err := CanonicalJSON(map[string]any(payload))
	if err != nil {
		return "", fmt.Errorf("canonicalize payload: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(datasetID.String()))
	h.Write(canonical)

	return hex.EncodeToString(h.Sum(nil)), nil
}

// CanonicalJSON renders v as compact JSON with object keys emitted in sorted
// order at every nesting level. Used for fingerprinting and for dataset size
// accounting, so the byte representation must be stable across processes.
func CanonicalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case Payload:
		return writeCanonical(buf, map[string]any(val))

	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyJSON, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(keyJSON)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	default:
		// Scalars and anything else. encoding/json sorts map keys itself,
		// so typed maps that slip through stay deterministic too.
		raw, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(raw)
		return nil
	}
}
