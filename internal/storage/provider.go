// Package storage provides root-scoped file-system access for corpus trees.
package storage

// Provider is the interface for file operations scoped to a corpus root.
type Provider interface {
	// List returns sorted relative paths of every markdown file under dir
	// (relative to root).
	List(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root), creating
	// parent directories as needed.
	Write(path string, content []byte) error
	// Exists reports whether a file exists at path (relative to root).
	Exists(path string) (bool, error)
	// Root returns the absolute root directory.
	Root() string
}
