//go:build !linux || !cgo
// +build !linux !cgo

package glaze

import "fmt"

// Open is available only where the dynamic loader shims are built; other
// platforms still get the full in-process backend.
func Open(path string) (NativeCloser, error) {
	return nil, fmt.Errorf("%w: opening shared library %q", ErrUnsupportedPlatform, path)
}
