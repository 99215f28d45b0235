package maps

// KeyValuePair is a generic key-value pair used to represent entries in maps.
// It's returned by OrderedMap.Seq() together with the insertion index.
//
// Example:
//
//	for i, entry := range orderedMap.Seq() {
//	    fmt.Printf("Index: %d, Key: %v, Value: %v\n", i, entry.Key, entry.Value)
//	}
type KeyValuePair[K comparable, V any] struct {
	Key   K
	Value V
}
