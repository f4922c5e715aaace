package source

import (
	"errors"
	"os"

	"github.com/gofrs/flock"
)

// ErrLocked is returned by CreateSink when another writer holds the file.
var ErrLocked = errors.New("source: file is locked by another writer")

// Sink is a local file opened for writing a container, holding an exclusive
// advisory lock until Close.
type Sink struct {
	*os.File
	lock *flock.Flock
}

// CreateSink locks the named file and truncates it. The lock is taken
// before truncation, so a file held by another writer is left untouched.
func CreateSink(name string) (*Sink, error) {
	lock := flock.New(name)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	return &Sink{File: f, lock: lock}, nil
}

// Close closes the file and releases the lock.
func (s *Sink) Close() error {
	err := s.File.Close()
	if uerr := s.lock.Unlock(); err == nil {
		err = uerr
	}
	return err
}
