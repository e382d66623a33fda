package fsops

// Deleter abstracts recursive directory removal
// Tests swap it out to prove dry-run never deletes
type Deleter interface {
	RemoveAll(path string) error
}
