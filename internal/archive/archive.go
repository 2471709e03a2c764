// Package archive reads CSV members out of a zip archive.
//
// Members are decoded lazily, one record at a time, and keyed by the header
// row. Members must be UTF-8; a byte order mark at the start of a member is
// stripped so the first header name is clean.
package archive

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/zip"
)

// ErrMemberNotFound is returned when the archive has no member with the requested name.
var ErrMemberNotFound = errors.New("archive member not found")

// Archive is an open zip archive.
type Archive struct {
	path    string
	rc      *zip.ReadCloser
	members map[string]*zip.File
}

// Open opens the zip archive at path.
func Open(path string) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}

	members := make(map[string]*zip.File, len(rc.File))
	for _, f := range rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		members[f.Name] = f
	}
	return &Archive{path: path, rc: rc, members: members}, nil
}

// Path returns the archive's file path.
func (a *Archive) Path() string {
	return a.path
}

// Close releases the archive.
func (a *Archive) Close() error {
	if a.rc == nil {
		return nil
	}
	err := a.rc.Close()
	a.rc = nil
	return err
}

// Names returns the member names (sorted).
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.members))
	for name := range a.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the archive contains the named member.
func (a *Archive) Has(name string) bool {
	_, ok := a.members[name]
	return ok
}

// OpenCSV opens the named member and reads its header row.
// The caller must Close the returned reader.
func (a *Archive) OpenCSV(name string) (*Reader, error) {
	f, ok := a.members[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open member %s: %w", name, err)
	}

	r, err := NewReader(rc)
	if err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("member %s: %w", name, err)
	}
	r.closer = rc
	return r, nil
}

var _ io.Closer = (*Reader)(nil)
