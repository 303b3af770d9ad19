package validate

import (
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrImageTooLarge = errors.New("image too large")
	ErrImageType     = errors.New("Please upload a JPEG or PNG image")
)

type SizeError struct {
	Max int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("Please upload an image smaller than %dMB", e.Max>>20)
}

func (e *SizeError) Is(target error) bool {
	return target == ErrImageTooLarge
}

// ReadImage reads at most max bytes from r and accepts only JPEG and PNG
// content, judged by the bytes rather than the client's content type.
// It returns the data and the file extension.
func ReadImage(r io.Reader, max int64) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > max {
		return nil, "", &SizeError{Max: max}
	}
	mt := mimetype.Detect(data)
	if !mt.Is("image/jpeg") && !mt.Is("image/png") {
		return nil, "", ErrImageType
	}
	return data, mt.Extension(), nil
}
