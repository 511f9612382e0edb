package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/Valneuskaya/foodgram-project-react/config"
)

// ImageStore turns an embedded base64 image payload into a stored,
// URL-addressable asset.
type ImageStore interface {
	Store(ctx context.Context, payload string) (string, error)
}

// ImageService stores decoded recipe images either in S3 or on local disk.
type ImageService struct {
	s3Config *config.S3Config
	mediaDir string
	baseURL  string
}

// NewImageService creates a new ImageService instance. s3Config may be nil,
// in which case images are written under mediaDir and served from baseURL.
func NewImageService(s3Config *config.S3Config, mediaDir, baseURL string) *ImageService {
	return &ImageService{
		s3Config: s3Config,
		mediaDir: mediaDir,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Store decodes a base64 data URI (or bare base64 PNG) and persists it,
// returning the asset URL. Malformed payloads yield a ValidationError.
func (s *ImageService) Store(ctx context.Context, payload string) (string, error) {
	data, ext, err := decodeImagePayload(payload)
	if err != nil {
		return "", NewValidationError("image", err.Error())
	}

	fileName := fmt.Sprintf("recipe_images/%s.%s", uuid.New().String(), ext)

	if s.s3Config != nil {
		return s.uploadToS3(ctx, data, fileName, ext)
	}
	return s.writeToDisk(data, fileName)
}

func (s *ImageService) uploadToS3(ctx context.Context, data []byte, fileName, ext string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/" + ext),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageService] Uploaded image to S3: %s", publicURL)
	return publicURL, nil
}

func (s *ImageService) writeToDisk(data []byte, fileName string) (string, error) {
	path := filepath.Join(s.mediaDir, filepath.FromSlash(fileName))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.baseURL + "/" + fileName, nil
}

// decodeImagePayload accepts "data:image/<type>;base64,<data>" payloads and
// bare base64 strings (treated as PNG).
func decodeImagePayload(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, "", fmt.Errorf("image payload is empty")
	}

	ext := "png"
	if strings.HasPrefix(payload, "data:") {
		meta, rest, found := strings.Cut(payload, ",")
		if !found {
			return nil, "", fmt.Errorf("malformed data URI")
		}
		mediaType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
		known, ok := imageExtensions[mediaType]
		if !ok {
			return nil, "", fmt.Errorf("unsupported image type %q", mediaType)
		}
		ext = known
		payload = rest
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 image data")
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("image payload is empty")
	}
	return data, ext, nil
}
