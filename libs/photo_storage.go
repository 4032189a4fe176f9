package libs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"food-order/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const profilePhotoFolder = "food-order/profiles"

// CloudinaryStorage keeps profile photos on Cloudinary.
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStorage(cfg *config.Config) (*CloudinaryStorage, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)

	switch {
	case cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "":
		cld, err = cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			return nil, fmt.Errorf("cloudinary init from params: %w", err)
		}
	case cfg.CloudinaryURL != "":
		cld, err = cloudinary.NewFromURL(cfg.CloudinaryURL)
		if err != nil {
			return nil, fmt.Errorf("cloudinary init from URL: %w", err)
		}
	default:
		return nil, errors.New("cloudinary credentials not configured")
	}

	return &CloudinaryStorage{cld: cld, folder: profilePhotoFolder}, nil
}

// Upload stores the image and returns its public URL and Cloudinary public id.
func (s *CloudinaryStorage) Upload(ctx context.Context, file io.Reader, name string) (string, string, error) {
	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       name,
		Folder:         s.folder,
		ResourceType:   "image",
		Transformation: "q_auto,f_auto",
	})
	if err != nil {
		return "", "", fmt.Errorf("upload to cloudinary: %w", err)
	}
	if resp == nil {
		return "", "", errors.New("cloudinary response is nil")
	}
	if resp.Error.Message != "" {
		return "", "", fmt.Errorf("upload to cloudinary: %s", resp.Error.Message)
	}

	url := resp.SecureURL
	if url == "" {
		url = resp.URL
	}
	if url == "" {
		return "", "", errors.New("cloudinary returned no URL")
	}
	return url, resp.PublicID, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("delete from cloudinary: %w", err)
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("cloudinary deletion failed: %s", result.Result)
	}
	return nil
}
