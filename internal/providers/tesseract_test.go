package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTesseractClient_ProcessImage(t *testing.T) {
	t.Run("uploads image with language options", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/tesseract" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("ParseMultipartForm: %v", err)
				return
			}

			var opts tesseractOptions
			if err := json.Unmarshal([]byte(r.FormValue("options")), &opts); err != nil {
				t.Errorf("options: %v", err)
			}
			if len(opts.Languages) != 2 || opts.Languages[0] != "eng" || opts.Languages[1] != "deu" {
				t.Errorf("languages = %v", opts.Languages)
			}

			file, header, err := r.FormFile("file")
			if err != nil {
				t.Errorf("FormFile: %v", err)
				return
			}
			defer file.Close()
			if header.Filename != "report.png" {
				t.Errorf("filename = %q", header.Filename)
			}
			data, _ := io.ReadAll(file)
			if string(data) != "png bytes" {
				t.Errorf("file contents = %q", data)
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":{"stdout":"Glucose 95 mg/dL\n","stderr":"","exit":{"code":0}}}`))
		}))
		defer server.Close()

		client := NewTesseractClient(TesseractConfig{BaseURL: server.URL})

		var fractions []float64
		result, err := client.ProcessImage(context.Background(), &OCRRequest{
			Image:    []byte("png bytes"),
			MIMEType: "image/png",
			Language: "eng+deu",
			Progress: func(p OCRProgress) { fractions = append(fractions, p.Fraction) },
		})
		if err != nil {
			t.Fatalf("ProcessImage() error = %v", err)
		}
		if result.Text != "Glucose 95 mg/dL\n" {
			t.Errorf("Text = %q", result.Text)
		}
		if len(fractions) != 3 || fractions[2] != 1 {
			t.Errorf("progress fractions = %v", fractions)
		}
	})

	t.Run("default language", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var opts tesseractOptions
			json.Unmarshal([]byte(r.FormValue("options")), &opts)
			if len(opts.Languages) != 1 || opts.Languages[0] != TesseractLanguage {
				t.Errorf("languages = %v", opts.Languages)
			}
			w.Write([]byte(`{"data":{"stdout":"x","exit":{"code":0}}}`))
		}))
		defer server.Close()

		client := NewTesseractClient(TesseractConfig{BaseURL: server.URL})
		if _, err := client.ProcessImage(context.Background(), &OCRRequest{Image: []byte("x")}); err != nil {
			t.Fatalf("ProcessImage() error = %v", err)
		}
	})

	t.Run("non-zero exit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"stdout":"","stderr":"Error in pixReadMem","exit":{"code":1}}}`))
		}))
		defer server.Close()

		client := NewTesseractClient(TesseractConfig{BaseURL: server.URL})
		result, err := client.ProcessImage(context.Background(), &OCRRequest{Image: []byte("x")})
		if err == nil {
			t.Fatal("expected error for non-zero exit")
		}
		if result.Success {
			t.Error("expected Success = false")
		}
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewTesseractClient(TesseractConfig{BaseURL: server.URL})
		_, err := client.ProcessImage(context.Background(), &OCRRequest{Image: []byte("x")})

		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
			t.Errorf("err = %v, want 500 StatusError", err)
		}
	})

	t.Run("garbage body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		}))
		defer server.Close()

		client := NewTesseractClient(TesseractConfig{BaseURL: server.URL})
		_, err := client.ProcessImage(context.Background(), &OCRRequest{Image: []byte("x")})
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("err = %v, want ErrMalformedResponse", err)
		}
	})
}
