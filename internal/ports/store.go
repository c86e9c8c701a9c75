package ports

// DocumentStore reads and writes serialized documents.
type DocumentStore interface {
	// Load returns the decoded JSON tree stored at path.
	Load(path string) (map[string]any, error)

	// Save writes tree to path, replacing any previous content atomically.
	Save(path string, tree map[string]any) error

	// Exists reports whether a document is stored at path.
	Exists(path string) bool
}
