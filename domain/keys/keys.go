package keys

import (
	"strings"
)

const (
	// PfxCatalog is the namespace of every key the catalog writes
	PfxCatalog = "catalog"
	// PfxMetadata is used for prefixing metadata documents keyed by content hash
	PfxMetadata = "metadata"
)

// CustomKey is used to join the customized key by componets with specified delimiter
func CustomKey(delimiter string, components ...string) string {
	return strings.Join(components, delimiter)
}

// RedisKey is used to join the redis key by componets, empty components are skipped
func RedisKey(components ...string) string {
	nonEmpty := make([]string, 0, len(components))
	for _, c := range components {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	return CustomKey(":", nonEmpty...)
}

// GetPrefix extracts the namespace of a key, all components but the last one
func GetPrefix(key string) string {
	i := strings.LastIndex(key, ":")
	if i < 0 {
		return ""
	}
	return key[:i]
}
