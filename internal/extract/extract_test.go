package extract

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackzampolin/careplan/internal/clinical"
	"github.com/jackzampolin/careplan/internal/providers"
)

func newPipeline(t *testing.T, ocr providers.OCRProvider) *Pipeline {
	t.Helper()
	p, err := New(Config{Provider: ocr})
	require.NoError(t, err)
	return p
}

func jpeg(t *testing.T) *clinical.UploadedImage {
	t.Helper()
	img, err := clinical.ImageFromBytes("report.jpg", clinical.MIMETypeJPEG, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	require.NoError(t, err)
	return img
}

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	p := newPipeline(t, providers.NewMockOCRProvider())
	assert.Equal(t, DefaultLanguage, p.Language())
	assert.Equal(t, "mock-ocr", p.Provider())
}

func TestPipeline_Extract(t *testing.T) {
	t.Run("returns recognized text", func(t *testing.T) {
		ocr := providers.NewMockOCRProvider()
		ocr.ResponseText = "glucose: 180"

		text, err := newPipeline(t, ocr).Extract(context.Background(), jpeg(t))
		require.NoError(t, err)
		assert.Equal(t, "glucose: 180", text)
	})

	t.Run("sends bytes, mime type and fixed language", func(t *testing.T) {
		ocr := providers.NewMockOCRProvider()
		p, err := New(Config{Provider: ocr, Language: "deu"})
		require.NoError(t, err)

		_, err = p.Extract(context.Background(), jpeg(t))
		require.NoError(t, err)

		req := ocr.LastRequest()
		require.NotNil(t, req)
		assert.Equal(t, []byte{0xFF, 0xD8, 0xFF, 0xE0}, req.Image)
		assert.Equal(t, clinical.MIMETypeJPEG, req.MIMEType)
		assert.Equal(t, "deu", req.Language)
	})

	t.Run("output is normalized", func(t *testing.T) {
		ocr := providers.NewMockOCRProvider()
		ocr.ResponseText = "\r\n  WBC 6.1   \r\n\r\n\r\nRBC 4.7\t\n\n"

		text, err := newPipeline(t, ocr).Extract(context.Background(), jpeg(t))
		require.NoError(t, err)
		assert.Equal(t, "WBC 6.1\n\nRBC 4.7", text)
	})

	t.Run("provider failure is an extraction error", func(t *testing.T) {
		ocr := providers.NewMockOCRProvider()
		ocr.ShouldFail = true

		_, err := newPipeline(t, ocr).Extract(context.Background(), jpeg(t))
		kind, ok := clinical.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, clinical.KindExtraction, kind)
	})

	t.Run("blank text is an extraction error", func(t *testing.T) {
		ocr := providers.NewMockOCRProvider()
		ocr.ResponseText = " \n\t\n"

		_, err := newPipeline(t, ocr).Extract(context.Background(), jpeg(t))
		assert.True(t, errors.Is(err, &clinical.OperationError{Kind: clinical.KindExtraction}))
	})

	t.Run("unreadable image is a file read error", func(t *testing.T) {
		ocr := providers.NewMockOCRProvider()
		img, err := clinical.NewImage("broken.png", clinical.MIMETypePNG, 10, func() (io.ReadCloser, error) {
			return nil, errors.New("permission denied")
		})
		require.NoError(t, err)

		_, err = newPipeline(t, ocr).Extract(context.Background(), img)
		assert.True(t, errors.Is(err, &clinical.OperationError{Kind: clinical.KindFileRead}))
		assert.Zero(t, ocr.RequestCount(), "OCR must not run when the image cannot be read")
	})

	t.Run("file removed after selection", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scan.png")
		require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o644))
		img, err := clinical.ImageFromFile(path, clinical.MIMETypePNG)
		require.NoError(t, err)
		require.NoError(t, os.Remove(path))

		_, err = newPipeline(t, providers.NewMockOCRProvider()).Extract(context.Background(), img)
		assert.True(t, errors.Is(err, &clinical.OperationError{Kind: clinical.KindFileRead}))
	})

	t.Run("oversized image is a file read error", func(t *testing.T) {
		p, err := New(Config{Provider: providers.NewMockOCRProvider(), MaxImageBytes: 2})
		require.NoError(t, err)

		_, err = p.Extract(context.Background(), jpeg(t))
		assert.True(t, errors.Is(err, &clinical.OperationError{Kind: clinical.KindFileRead}))
	})
}

func TestNormalize(t *testing.T) {
	cases := map[string]struct{ in, want string }{
		"already clean":    {"glucose: 180", "glucose: 180"},
		"crlf":             {"a\r\nb", "a\nb"},
		"bare cr":          {"a\rb", "a\nb"},
		"trailing spaces":  {"a   \nb\t", "a\nb"},
		"blank runs":       {"a\n\n\n\nb", "a\n\nb"},
		"outer whitespace": {"\n\n  a  \n\n", "a"},
		"leading indent":   {"  a\n  b", "a\n  b"},
		"empty":            {"", ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}
