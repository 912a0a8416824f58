// strings.go: zero-copy wrapper over a native string.
package glaze

import "unsafe"

// StringRef wraps a native string in place. Reads never copy eagerly: Bytes
// views the backing storage directly and is valid only until the next
// mutation of the underlying string; String copies.
type StringRef struct {
	nat  Native
	ptr  unsafe.Pointer
	life *liveness
	root any // owning root wrapper; keeps the root reachable while this view is
}

// Len returns the byte length.
func (s *StringRef) Len() (int, error) {
	if err := s.life.check(); err != nil {
		return 0, err
	}
	_, n, err := s.nat.StringBytes(s.ptr)
	return n, err
}

// Bytes views the backing bytes without copying.
func (s *StringRef) Bytes() ([]byte, error) {
	if err := s.life.check(); err != nil {
		return nil, err
	}
	data, n, err := s.nat.StringBytes(s.ptr)
	if err != nil {
		return nil, err
	}
	if err := checkNativeCount(uint64(n)); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return unsafe.Slice((*byte)(data), n), nil
}

// Get copies the contents into a Go string.
func (s *StringRef) Get() (string, error) {
	b, err := s.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Set replaces the contents in place.
func (s *StringRef) Set(v string) error {
	if err := s.life.check(); err != nil {
		return err
	}
	return s.nat.StringSet(s.ptr, v)
}

// String implements fmt.Stringer; decode failures render as an empty string.
func (s *StringRef) String() string {
	v, err := s.Get()
	if err != nil {
		return ""
	}
	return v
}
