// Package util holds small helpers shared across RCI's internal packages.
package util

import (
	"crypto/md5"
	"encoding/hex"
)

// GenerateDocID derives a VectorDocument id from the component's identity,
// facet type, and the facet's own content, per spec.md:56's
// "<componentName>-<facetType>-<hash8>" scheme. Content-addressed: a
// re-sync that changes a facet's text produces a new id, so AddBatch's
// existing-id dedup never shadows stale content with a fresh one.
func GenerateDocID(componentName, facetType, content string) string {
	sum := md5.Sum([]byte(componentName + facetType + content))
	return componentName + "-" + facetType + "-" + hex.EncodeToString(sum[:])[:8]
}
