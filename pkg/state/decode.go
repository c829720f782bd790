package state

import (
	"bytes"
	"fmt"

	"howett.net/plist"
)

// Decoder turns raw query output into nested groups of label/value pairs.
// It must be a pure function of its input.
type Decoder func(data []byte) (map[string]any, error)

// DecodePlist decodes `dsconfigad -show -xml` output. Empty or
// whitespace-only input decodes to an empty map.
func DecodePlist(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	var doc map[string]any
	if _, err := plist.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode plist: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// flatten merges every group into one map. Later groups overwrite earlier
// ones on collision; groups are visited in sorted order so the result is
// deterministic. Top-level entries that are not groups are kept as is.
func flatten(doc map[string]any) map[string]any {
	flat := make(map[string]any)
	for _, name := range sortedKeys(doc) {
		switch group := doc[name].(type) {
		case map[string]any:
			for k, v := range group {
				flat[k] = v
			}
		default:
			flat[name] = group
		}
	}
	return flat
}
