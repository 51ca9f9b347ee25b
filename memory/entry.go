package memory

// Entry is a key-value pair. Keys are /-separated relative paths and values
// are raw bytes.
type Entry struct {
	Key   string
	Value []byte
}
