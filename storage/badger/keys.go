package badger

// Key prefixes for different data types
const (
	snapshotKey = "snapshot:current"
	usagePrefix = "usage:"
)

// makeUsageKey generates the launch counter key for an entry identifier.
func makeUsageKey(id string) []byte {
	return []byte(usagePrefix + id)
}

// usageIDFromKey strips the usage prefix from a key.
func usageIDFromKey(key []byte) string {
	return string(key[len(usagePrefix):])
}
