package storage

import (
	"io"
)

// FileInfo describes an incoming blob.
type FileInfo struct {
	Filename    string
	ContentType string
	Size        int64
}

// Store issues revocable handles over binary blobs. Every handle is owned
// by exactly one catalog entry at a time; revoking it makes the bytes
// unreachable.
type Store interface {
	Save(r io.Reader, info FileInfo) (string, error)
	SaveBytes(b []byte, ext string) (string, error)
	Open(handle string) (io.ReadSeekCloser, error)
	Path(handle string) (string, error)
	Revoke(handle string) error
	Close() error
}

// RevocationRecorder observes effective revocations. Tests use it to prove
// that teardown releases every handle exactly once.
type RevocationRecorder interface {
	Revoked(handle string)
}
