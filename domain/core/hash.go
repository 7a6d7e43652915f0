package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters
func (h Hash) Short() string {
	if len(h) < 12 {
		return string(h)
	}
	return string(h[:12])
}

// Domain-specific hash types
type (
	DatasetHash Hash
	ParamsHash  Hash
)

func (h DatasetHash) String() string { return Hash(h).String() }
func (h ParamsHash) String() string  { return Hash(h).String() }

// ComputeDatasetHash fingerprints a labeled dataset by its observation ids and
// labels, in order. Two runs over the same rows hash identically.
func ComputeDatasetHash(ids []string, labels []string) DatasetHash {
	var data strings.Builder
	for i, id := range ids {
		data.WriteString(id)
		data.WriteByte(0)
		if i < len(labels) {
			data.WriteString(labels[i])
		}
		data.WriteByte('\n')
	}
	return DatasetHash(NewHash([]byte(data.String())))
}

// ComputeParamsHash fingerprints a parameter map independent of key order
func ComputeParamsHash(params map[string]interface{}) ParamsHash {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("=%v;", params[key]))
	}
	return ParamsHash(NewHash([]byte(data.String())))
}
