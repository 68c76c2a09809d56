package filestorage

import (
	"bytes"
	"io"
	"mime/multipart"
)

// Upload is an avatar file received from a form
type Upload struct {
	Filename string // Original filename as sent by the client
	Size     int64  // Size in bytes
	open     func() (io.ReadCloser, error)
}

// IsEmpty reports whether no file content was sent
func (u *Upload) IsEmpty() bool {
	return u == nil || u.Size <= 0 || u.open == nil
}

// Open returns a reader over the upload content
func (u *Upload) Open() (io.ReadCloser, error) {
	return u.open()
}

// FromFileHeader wraps a multipart file; a nil header yields a nil upload
func FromFileHeader(fh *multipart.FileHeader) *Upload {
	if fh == nil {
		return nil
	}
	return &Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// FromBytes wraps in-memory content
func FromBytes(filename string, data []byte) *Upload {
	return &Upload{
		Filename: filename,
		Size:     int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// ImageStore defines avatar storage operations
type ImageStore interface {
	// Store saves the upload under a generated name and returns that name.
	// An empty upload returns the default image sentinel.
	Store(upload *Upload) (string, error)

	// Delete removes a stored image. The default sentinel and missing files are
	// ignored; failures are logged, never returned.
	Delete(storedName string)

	// Resolve returns the path an image can be fetched from
	Resolve(storedName string) string

	// DefaultImage returns the sentinel stored for members without an avatar
	DefaultImage() string
}
