// Package cloudinary stores submission files and class images on the Cloudinary CDN.
package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Service uploads files under a root folder; callers pick a subfolder per purpose.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload sends the file to Cloudinary and returns its secure URL. The upstream error
// text is kept in the returned error so callers can show it to the user.
func (s *Service) Upload(ctx context.Context, subfolder, name string, reader io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:         joinFolder(s.folder, subfolder),
		PublicID:       buildPublicID(name),
		ResourceType:   "auto",
		UniqueFilename: boolPtr(false),
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("upload %s: %s", name, result.Error.Message)
	}

	s.logger.Info().Str("public_id", result.PublicID).Str("folder", params.Folder).Msg("file uploaded to cloudinary")

	return result.SecureURL, nil
}

func joinFolder(root, subfolder string) string {
	subfolder = strings.Trim(subfolder, "/")
	if root == "" {
		return subfolder
	}
	if subfolder == "" {
		return root
	}
	return path.Join(root, subfolder)
}

func buildPublicID(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = "file"
	}

	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
}

func boolPtr(v bool) *bool {
	return &v
}
