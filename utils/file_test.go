package utils

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateImageFile(t *testing.T) {
	assert.NoError(t, ValidateImageFile(&multipart.FileHeader{Filename: "me.JPG", Size: 1024}, 5<<20))
	assert.ErrorIs(t, ValidateImageFile(&multipart.FileHeader{Filename: "me.pdf", Size: 1024}, 5<<20), ErrInvalidImageType)
	assert.Error(t, ValidateImageFile(&multipart.FileHeader{Filename: "me.png", Size: 6 << 20}, 5<<20))
	assert.Error(t, ValidateImageFile(nil, 5<<20))
}

func TestPhotoName(t *testing.T) {
	assert.Equal(t, "user_3_my_selfie", PhotoName(3, "my selfie.png"))
	assert.Equal(t, "user_3_photo", PhotoName(3, ".png"))
}
