package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
)

var (
	ErrEmptyFile     = errors.New("file is empty")
	ErrFileTooLarge  = errors.New("file too large")
	ImageUploadTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
)

// ReadUploadedFile reads an uploaded file completely and checks its type by content, not by the
// declared header. allowedTypes is a slice of allowed MIME types (e.g., []string{"image/jpeg"}).
func ReadUploadedFile(fileHeader *multipart.FileHeader, maxBytes int64, allowedTypes []string) ([]byte, string, error) {
	if maxBytes > 0 && fileHeader.Size > maxBytes {
		return nil, "", fmt.Errorf("%w: %d bytes", ErrFileTooLarge, fileHeader.Size)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if maxBytes > 0 {
		reader = io.LimitReader(file, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyFile
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, "", ErrFileTooLarge
	}

	contentType, err := ValidateContentType(data, allowedTypes)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}

// ValidateContentType sniffs the first 512 bytes with http.DetectContentType.
func ValidateContentType(data []byte, allowedTypes []string) (string, error) {
	contentType := http.DetectContentType(data)
	if !slices.Contains(allowedTypes, contentType) {
		return "", fmt.Errorf("invalid file type: %s", contentType)
	}
	return contentType, nil
}
