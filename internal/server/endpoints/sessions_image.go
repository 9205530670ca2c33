package endpoints

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/careplan/internal/api"
	"github.com/jackzampolin/careplan/internal/clinical"
	"github.com/jackzampolin/careplan/internal/extract"
	"github.com/jackzampolin/careplan/internal/session"
)

// ImageFormField is the multipart field carrying the lab report.
const ImageFormField = "file"

// SelectImageEndpoint handles POST /api/sessions/{id}/image with a
// multipart lab report upload.
type SelectImageEndpoint struct{}

func (e *SelectImageEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/image", e.handler
}

func (e *SelectImageEndpoint) RequiresInit() bool { return true }

func (e *SelectImageEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	c := lookupSession(w, r)
	if c == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, extract.DefaultMaxImageBytes+1<<20)
	if err := r.ParseMultipartForm(extract.DefaultMaxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, fh, err := r.FormFile(ImageFormField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	data, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read upload: %v", err))
		return
	}

	mimeType := declaredType(fh.Header.Get("Content-Type"), data)
	if !clinical.IsSupportedImageType(mimeType) {
		snap, err := c.SelectUpload(fh.Filename, mimeType, int64(len(data)), nil)
		writeActionError(w, err, &snap)
		return
	}

	// The image lives only in the session; replacing or clearing it drops
	// the last reference to data.
	open := func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	snap, err := c.SelectUpload(fh.Filename, mimeType, int64(len(data)), open)
	if err != nil {
		writeActionError(w, err, &snap)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// declaredType trusts the part's Content-Type and sniffs the content only
// when the client sent none.
func declaredType(header string, data []byte) string {
	if header != "" && header != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(header); err == nil {
			return mt
		}
		return header
	}
	return baseType(mimetype.Detect(data).String())
}

func baseType(s string) string {
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		return mt
	}
	return s
}

func (e *SelectImageEndpoint) Command(getServerURL func() string) *cobra.Command {
	var mimeType string
	cmd := &cobra.Command{
		Use:   "image <id> <path>",
		Short: "Upload a lab report image (JPEG or PNG)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("failed to open image: %w", err)
			}
			defer f.Close()

			if mimeType == "" {
				detected, err := mimetype.DetectReader(f)
				if err != nil {
					return fmt.Errorf("failed to detect image type: %w", err)
				}
				mimeType = baseType(detected.String())
				if _, err := f.Seek(0, io.SeekStart); err != nil {
					return err
				}
			}

			client := api.NewClient(getServerURL())
			var resp session.Snapshot
			path := "/api/sessions/" + args[0] + "/image"
			if err := client.PostFile(cmd.Context(), path, ImageFormField, filepath.Base(args[1]), mimeType, f, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&mimeType, "type", "", "Declared MIME type (detected from content when empty)")
	return cmd
}
