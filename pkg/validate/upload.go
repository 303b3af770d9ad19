package validate

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/GlebRadaev/learnhub/pkg/storage"
)

// room for the text fields and part headers of a multipart body
const formOverhead = 1 << 20

var ErrMultipart = errors.New("invalid multipart form")

// ParseMultipart caps the body at files images of max bytes each and
// parses it. A body over the cap is reported as a *SizeError.
func ParseMultipart(w http.ResponseWriter, r *http.Request, files int, max int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(files)*max+formOverhead)
	if err := r.ParseMultipartForm(max); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &SizeError{Max: max}
		}
		return fmt.Errorf("%w: %v", ErrMultipart, err)
	}
	return nil
}

// FormImage reads the image uploaded as field. It returns nil, nil when the
// field is absent.
func FormImage(r *http.Request, field string, max int64) (*storage.File, error) {
	f, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMultipart, err)
	}
	defer f.Close()

	data, ext, err := ReadImage(f, max)
	if err != nil {
		return nil, err
	}
	return &storage.File{Data: data, Ext: ext}, nil
}
