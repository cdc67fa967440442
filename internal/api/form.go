package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// form accumulates a multipart/form-data body.
type form struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	err    error
}

func newForm() *form {
	f := &form{}
	f.writer = multipart.NewWriter(&f.buf)
	return f
}

func (f *form) field(name, value string) {
	if f.err != nil {
		return
	}
	f.err = f.writer.WriteField(name, value)
}

// file copies the file at path into the named part.
func (f *form) file(name, path string) {
	if f.err != nil {
		return
	}
	src, err := os.Open(path) // #nosec G304 -- user-selected upload
	if err != nil {
		f.err = fmt.Errorf("failed to open %s: %w", path, err)
		return
	}
	defer func() { _ = src.Close() }()

	part, err := f.writer.CreateFormFile(name, filepath.Base(path))
	if err != nil {
		f.err = err
		return
	}
	_, f.err = io.Copy(part, src)
}

// finish closes the writer and returns the body and its content type.
func (f *form) finish() (*bytes.Buffer, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	if err := f.writer.Close(); err != nil {
		return nil, "", err
	}
	return &f.buf, f.writer.FormDataContentType(), nil
}
