package clinical

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Accepted lab report image types.
const (
	MIMETypeJPEG = "image/jpeg"
	MIMETypePNG  = "image/png"
)

// IsSupportedImageType reports whether mimeType is an accepted upload type.
func IsSupportedImageType(mimeType string) bool {
	switch mimeType {
	case MIMETypeJPEG, MIMETypePNG:
		return true
	default:
		return false
	}
}

// UploadedImage is a selected lab report. Its content is read lazily by the
// extraction pipeline, so read failures surface there as FileReadErrors.
type UploadedImage struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Size     int64  `json:"size"`

	open func() (io.ReadCloser, error)
}

// NewImage validates the declared MIME type and returns an image whose
// content is produced by open. Unsupported types yield a ValidationError.
func NewImage(name, mimeType string, size int64, open func() (io.ReadCloser, error)) (*UploadedImage, error) {
	if !IsSupportedImageType(mimeType) {
		return nil, NewValidationError(fmt.Sprintf("Unsupported file type %q. Please upload a JPEG or PNG image.", mimeType))
	}
	if open == nil {
		return nil, NewValidationError("No image content was provided.")
	}
	return &UploadedImage{
		ID:       uuid.New().String(),
		Name:     name,
		MIMEType: mimeType,
		Size:     size,
		open:     open,
	}, nil
}

// ImageFromBytes wraps in-memory content (e.g. a multipart upload).
func ImageFromBytes(name, mimeType string, data []byte) (*UploadedImage, error) {
	return NewImage(name, mimeType, int64(len(data)), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// ImageFromFile selects an image on disk. When mimeType is empty it is
// detected from the file content. The file is opened again at extraction
// time, so a file removed in between produces a FileReadError.
func ImageFromFile(path, mimeType string) (*UploadedImage, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("Cannot access %s.", filepath.Base(path)))
	}
	if mimeType == "" {
		detected, err := mimetype.DetectFile(path)
		if err != nil {
			return nil, NewValidationError(fmt.Sprintf("Cannot determine the type of %s.", filepath.Base(path)))
		}
		mimeType = detected.String()
	}
	return NewImage(filepath.Base(path), mimeType, info.Size(), func() (io.ReadCloser, error) {
		return os.Open(path)
	})
}

// Open returns a reader over the image content.
func (img *UploadedImage) Open() (io.ReadCloser, error) {
	return img.open()
}
