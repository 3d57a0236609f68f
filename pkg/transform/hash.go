package transform

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// HashKey builds a content-addressed dimension key: the hex digest of the
// "|"-joined non-nil components. Identical inputs always yield identical
// keys across runs.
func HashKey(values ...interface{}) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		if s, ok := v.(*string); ok {
			if s == nil {
				continue
			}
			parts = append(parts, *s)
			continue
		}
		parts = append(parts, fmt.Sprintf("%v", v))
	}
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
