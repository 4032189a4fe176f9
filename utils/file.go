package utils

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var ErrInvalidImageType = errors.New("invalid file type. Only jpg, jpeg, png, gif, webp allowed")

// ValidateImageFile checks extension and size of an uploaded profile photo.
func ValidateImageFile(fileHeader *multipart.FileHeader, maxSize int64) error {
	if fileHeader == nil {
		return errors.New("file is required")
	}
	if maxSize > 0 && fileHeader.Size > maxSize {
		return fmt.Errorf("file size exceeds maximum allowed size of %d bytes", maxSize)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExtensions[ext] {
		return ErrInvalidImageType
	}
	return nil
}

// PhotoName builds a storage-safe name for a user's profile photo.
func PhotoName(userID int, filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.ReplaceAll(strings.TrimSpace(base), " ", "_")
	if base == "" || len(base) > 64 {
		base = "photo"
	}
	return fmt.Sprintf("user_%d_%s", userID, base)
}
