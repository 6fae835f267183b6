package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/vinaypatel8092/VideoTube/internal/apperr"
	"github.com/vinaypatel8092/VideoTube/internal/assets"
	"github.com/vinaypatel8092/VideoTube/internal/logging"
)

// UploadConfig controls where multipart files are spooled and how large a
// request body may be.
type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

const multipartMemory = 8 << 20

// multipartForm holds the text fields and the local paths of the files
// received in a multipart request.
type multipartForm struct {
	values map[string][]string
	files  map[string]string
}

func (f multipartForm) value(name string) string {
	if v := f.values[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (f multipartForm) file(name string) string { return f.files[name] }

func (f multipartForm) paths() []string {
	paths := make([]string, 0, len(f.files))
	for _, p := range f.files {
		paths = append(paths, p)
	}
	return paths
}

// readMultipart parses a multipart body and copies the first file of each
// named field into the upload directory. Ownership of the copied files passes
// to the caller. Non-multipart bodies yield an empty form.
func (c UploadConfig) readMultipart(w http.ResponseWriter, r *http.Request, fields ...string) (multipartForm, error) {
	form := multipartForm{values: map[string][]string{}, files: map[string]string{}}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return form, nil
	}

	if c.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, c.MaxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return form, apperr.InvalidArgument(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		}
		return form, apperr.Wrap(apperr.KindInvalidArgument, "invalid multipart body", err)
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.FromContext(r.Context()).Warn("remove multipart spool", "error", err)
		}
	}()

	form.values = r.MultipartForm.Value
	for _, field := range fields {
		headers := r.MultipartForm.File[field]
		if len(headers) == 0 {
			continue
		}
		path, err := c.spool(headers[0].Filename, func() (io.ReadCloser, error) { return headers[0].Open() })
		if err != nil {
			assets.RemoveLocal(form.paths()...).Log(logging.FromContext(r.Context()))
			return multipartForm{}, fmt.Errorf("store upload %s: %w", field, err)
		}
		form.files[field] = path
	}
	return form, nil
}

// readForm accepts either a multipart body, spooling the named file fields,
// or a flat JSON object of text fields.
func (c UploadConfig) readForm(w http.ResponseWriter, r *http.Request, fields ...string) (multipartForm, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return c.readMultipart(w, r, fields...)
	}
	form := multipartForm{values: map[string][]string{}, files: map[string]string{}}
	if r.Body == nil || r.ContentLength == 0 {
		return form, nil
	}
	var body map[string]string
	if err := decodeJSON(r, &body); err != nil {
		return form, err
	}
	for k, v := range body {
		form.values[k] = []string{v}
	}
	return form, nil
}

func (c UploadConfig) spool(filename string, open func() (io.ReadCloser, error)) (string, error) {
	src, err := open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dir := c.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 10 || strings.ContainsAny(ext, "*\\/") {
		ext = ""
	}
	dst, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}
