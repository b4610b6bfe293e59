package utils

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"testing"
)

func multipartFile(t *testing.T, field string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, "upload.bin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	w.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File[field][0]
}

func TestReadUploadedFile(t *testing.T) {
	var pngData bytes.Buffer
	if err := png.Encode(&pngData, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}

	t.Run("png accepted", func(t *testing.T) {
		data, contentType, err := ReadUploadedFile(multipartFile(t, "photo_0", pngData.Bytes()), 1<<20, ImageUploadTypes)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if contentType != "image/png" {
			t.Errorf("unexpected content type: %s", contentType)
		}
		if !bytes.Equal(data, pngData.Bytes()) {
			t.Error("content changed")
		}
	})

	t.Run("text rejected", func(t *testing.T) {
		_, _, err := ReadUploadedFile(multipartFile(t, "photo_0", []byte("hello world")), 1<<20, ImageUploadTypes)
		if err == nil {
			t.Error("expected error for text file")
		}
	})

	t.Run("too large", func(t *testing.T) {
		_, _, err := ReadUploadedFile(multipartFile(t, "photo_0", pngData.Bytes()), 10, ImageUploadTypes)
		if !errors.Is(err, ErrFileTooLarge) {
			t.Errorf("expected ErrFileTooLarge, got %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		_, _, err := ReadUploadedFile(multipartFile(t, "photo_0", nil), 1<<20, ImageUploadTypes)
		if !errors.Is(err, ErrEmptyFile) {
			t.Errorf("expected ErrEmptyFile, got %v", err)
		}
	})
}
