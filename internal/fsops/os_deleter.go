package fsops

import "os"

// OSDeleter implements Deleter using os.RemoveAll.
// A symlinked target loses only the link, never what it points to.
type OSDeleter struct{}

func (OSDeleter) RemoveAll(path string) error {
	return os.RemoveAll(path)
}
