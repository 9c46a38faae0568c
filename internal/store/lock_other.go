//go:build !unix

package store

// fileLock is a no-op where flock is unavailable; single-writer is then
// enforced only by the Engine mutex within one process.
type fileLock struct{}

func acquireLock(path string) (*fileLock, error) {
	return &fileLock{}, nil
}

func (l *fileLock) release() error { return nil }

// syncDir is a no-op; directories cannot be synced portably here.
func syncDir(dir string) error { return nil }
