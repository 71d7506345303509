// Package models defines upload items, their files and the backend records
// produced by successful uploads.
package models

import (
	"bytes"
	"io"
	"os"
)

// Source opens a fresh reader over a file's bytes. Every upload attempt
// opens its own reader, so retries never share a half-read stream.
type Source interface {
	Open() (io.ReadCloser, error)
}

type pathSource string

func (p pathSource) Open() (io.ReadCloser, error) { return os.Open(string(p)) }

type bytesSource []byte

func (b bytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// File is an immutable reference to an upload payload and its metadata.
type File struct {
	name        string
	size        int64
	contentType string
	src         Source
}

func NewFile(name string, size int64, contentType string, src Source) File {
	return File{name: name, size: size, contentType: contentType, src: src}
}

// FileFromPath references a file on disk; the path is opened lazily.
func FileFromPath(path, name string, size int64, contentType string) File {
	return NewFile(name, size, contentType, pathSource(path))
}

// FileFromBytes keeps a private copy of data.
func FileFromBytes(name, contentType string, data []byte) File {
	cp := make([]byte, len(data))
	copy(cp, data)
	return NewFile(name, int64(len(cp)), contentType, bytesSource(cp))
}

func (f File) Name() string        { return f.name }
func (f File) Size() int64         { return f.size }
func (f File) ContentType() string { return f.contentType }

func (f File) Open() (io.ReadCloser, error) {
	if f.src == nil {
		return nil, os.ErrNotExist
	}
	return f.src.Open()
}
