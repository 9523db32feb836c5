package source

import (
	"fmt"
	"path/filepath"
)

// Kind discriminates the supported input source flavours.
type Kind int

const (
	// KindFile is an on-disk file path.
	KindFile Kind = iota

	// KindFS is a name inside an fs.FS supplied to the loader.
	KindFS

	// KindBytes is an in-memory buffer, used by tests and editor tooling.
	KindBytes
)

// Source identifies where an annotated declaration file lives. Loading is
// the loader's concern; a Source is only an address.
type Source interface {
	Location() string
	Kind() Kind
}

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }
func (s fileSource) Kind() Kind       { return KindFile }

// FromFile returns a Source pointing at a file path.
func FromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }
func (s fsSource) Kind() Kind       { return KindFS }

// FromFS returns a Source identifying a file inside the loader's fs.FS.
func FromFS(name string) Source {
	return fsSource{name: name}
}

type bytesSource struct {
	name string
	data []byte
}

func (s bytesSource) Location() string { return s.name }
func (s bytesSource) Kind() Kind       { return KindBytes }

// Bytes returns the buffered content of a KindBytes source.
func Bytes(src Source) ([]byte, bool) {
	bs, ok := src.(bytesSource)
	if !ok {
		return nil, false
	}
	return bs.data, true
}

// FromBytes returns a Source wrapping an in-memory buffer. The name is used
// for positions in diagnostics. It panics on an empty name to surface wiring
// mistakes early.
func FromBytes(name string, data []byte) Source {
	if name == "" {
		panic(fmt.Sprintf("source: empty name for %d-byte buffer", len(data)))
	}
	return bytesSource{name: name, data: data}
}
