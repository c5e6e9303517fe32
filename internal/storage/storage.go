// Package storage persists uploaded files.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// UploadPrefix is prepended to every stored upload name.
const UploadPrefix = "uploaded_"

// ErrInvalidName is returned for file names with no usable base name.
var ErrInvalidName = errors.New("invalid file name")

// Object describes a stored file.
type Object struct {
	Name string
	Path string
	Size int64
}

// Storage stores named files. Saving an existing name replaces it.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) (Object, error)
}

// UploadName maps a client-supplied file name to the stored name: the base
// name with UploadPrefix. Directory parts from either path style are dropped.
func UploadName(filename string) (string, error) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if base == "" || base == "." || base == ".." || base == "/" {
		return "", ErrInvalidName
	}
	return UploadPrefix + base, nil
}
