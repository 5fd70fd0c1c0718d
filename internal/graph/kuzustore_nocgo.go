//go:build !cgo

package graph

import "errors"

// ErrKuzuUnavailable is returned by the Kuzu constructors in builds without cgo.
var ErrKuzuUnavailable = errors.New("kuzu: store requires a cgo-enabled build")

// KuzuStore is unavailable without cgo.
type KuzuStore struct{ Store }

// NewKuzuStore always fails in builds without cgo.
func NewKuzuStore() (*KuzuStore, error) {
	return nil, ErrKuzuUnavailable
}

// NewKuzuFileStore always fails in builds without cgo.
func NewKuzuFileStore(string) (*KuzuStore, error) {
	return nil, ErrKuzuUnavailable
}
