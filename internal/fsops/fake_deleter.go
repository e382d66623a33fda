package fsops

// FakeDeleter implements Deleter for testing
// Records every call; when Err is set the call at FailAt (0-based) returns it
type FakeDeleter struct {
	Calls  []string
	Err    error
	FailAt int
}

func (f *FakeDeleter) RemoveAll(path string) error {
	f.Calls = append(f.Calls, "rmall:"+path)
	if f.Err != nil && len(f.Calls)-1 == f.FailAt {
		return f.Err
	}
	return nil
}
