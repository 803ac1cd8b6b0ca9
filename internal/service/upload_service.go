package service

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/models"
	"github.com/noah-isme/lynx-api/internal/observability"
	"github.com/noah-isme/lynx-api/internal/repository"
)

var (
	// ErrUploadMissing indicates no file was attached.
	ErrUploadMissing = errors.New("file is required")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	// ErrUploadScanFailed indicates validation of the file failed.
	ErrUploadScanFailed = errors.New("file scanning failed")
	// ErrUploadFailed wraps storage failures; the wrapped text is safe to show users.
	ErrUploadFailed = errors.New("upload failed")
)

// Upload purposes select the allowed types and the CDN subfolder.
const (
	UploadPurposeSubmission = "submission"
	UploadPurposeClassImage = "class_image"
)

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, subfolder, name string, reader io.Reader) (string, error)
}

// UploadOptions describes who uploads and why.
type UploadOptions struct {
	OwnerID string
	Purpose string
}

// UploadService validates files and stores them on the CDN.
type UploadService interface {
	Upload(ctx context.Context, file *multipart.FileHeader, opts UploadOptions) (dto.UploadResponse, error)
}

type uploadService struct {
	storage FileStorage
	repo    repository.UploadRepository
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewUploadService constructs an upload service.
func NewUploadService(storage FileStorage, repo repository.UploadRepository, maxSizeMB int, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &uploadService{
		storage: storage,
		repo:    repo,
		logger:  logger.With().Str("component", "upload_service").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("github.com/noah-isme/lynx-api/internal/service/upload"),
	}
}

// Upload checks size, sniffed type and archive bombs before anything leaves the
// process. Nothing is recorded when the CDN rejects the file.
func (s *uploadService) Upload(ctx context.Context, file *multipart.FileHeader, opts UploadOptions) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "upload.store")
	defer span.End()

	purpose := opts.Purpose
	if purpose == "" {
		purpose = UploadPurposeSubmission
	}
	span.SetAttributes(
		attribute.Int64("upload.max_bytes", s.maxSize),
		attribute.String("upload.purpose", purpose),
	)

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	if s.storage == nil {
		err := fmt.Errorf("%w: file storage is not configured", ErrUploadFailed)
		span.SetStatus(codes.Error, "storage missing")
		return dto.UploadResponse{}, err
	}

	if file == nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.UploadResponse{}, ErrUploadMissing
	}
	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.UploadResponse{}, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.UploadResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.UploadResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.UploadResponse{}, ErrUploadTooLarge
	}

	fileType := normalizeMime(mimetype.Detect(buf.Bytes()).String())
	span.SetAttributes(attribute.String("upload.detected_mime", fileType))
	if !isAllowedType(purpose, fileType) {
		observability.UploadRejected().WithLabelValues("type").Inc()
		span.RecordError(ErrUploadTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return dto.UploadResponse{}, ErrUploadTypeNotAllowed
	}

	if err := s.scan(buf.Bytes(), fileType); err != nil {
		observability.UploadRejected().WithLabelValues("scan").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "scan failed")
		return dto.UploadResponse{}, err
	}

	checksum := sha256.Sum256(buf.Bytes())
	sanitizedName := sanitizeFileName(file.Filename)
	span.SetAttributes(
		attribute.String("upload.sanitized_name", sanitizedName),
		attribute.Int64("upload.size_bytes", int64(buf.Len())),
	)

	url, err := s.storage.Upload(ctx, uploadFolder(purpose), sanitizedName, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		s.logger.Warn().Err(err).Str("owner_id", opts.OwnerID).Msg("cdn rejected upload")
		return dto.UploadResponse{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	record := models.UploadRecord{
		OwnerID:   opts.OwnerID,
		Purpose:   purpose,
		FileName:  sanitizedName,
		URL:       url,
		MimeType:  fileType,
		SizeBytes: int64(buf.Len()),
		Checksum:  hex.EncodeToString(checksum[:]),
	}

	if s.repo != nil {
		if err := s.repo.Create(ctx, &record); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "persistence failed")
			return dto.UploadResponse{}, err
		}
	}

	observability.UploadRequests().WithLabelValues(uploadTypeLabel(fileType)).Inc()
	span.SetStatus(codes.Ok, "stored")

	return dto.UploadResponse{
		URL:       url,
		SizeBytes: record.SizeBytes,
		MimeType:  record.MimeType,
		Checksum:  record.Checksum,
		FileName:  strings.TrimSpace(filepath.Base(file.Filename)),
	}, nil
}

func (s *uploadService) scan(payload []byte, mime string) error {
	if mime == "application/zip" {
		reader, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
		if err != nil {
			return ErrUploadScanFailed
		}
		var totalUncompressed uint64
		for _, f := range reader.File {
			totalUncompressed += f.UncompressedSize64
			if totalUncompressed > uint64(s.maxSize*20) {
				return fmt.Errorf("zip archive uncompressed size too large: %w", ErrUploadScanFailed)
			}
		}
	}
	return nil
}

func uploadFolder(purpose string) string {
	switch purpose {
	case UploadPurposeClassImage:
		return "classes"
	default:
		return "submissions"
	}
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}

// normalizeMime drops parameters such as charset.
func normalizeMime(m string) string {
	lower := strings.ToLower(strings.TrimSpace(m))
	if idx := strings.Index(lower, ";"); idx >= 0 {
		lower = strings.TrimSpace(lower[:idx])
	}
	if lower == "application/x-zip-compressed" {
		return "application/zip"
	}
	return lower
}

func isAllowedType(purpose, m string) bool {
	if strings.HasPrefix(m, "image/") {
		return true
	}
	if purpose == UploadPurposeClassImage {
		return false
	}

	switch m {
	case "application/pdf", "application/zip", "text/plain":
		return true
	case "application/msword", "application/vnd.ms-excel", "application/vnd.ms-powerpoint":
		return true
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation":
		return true
	default:
		return false
	}
}

func uploadTypeLabel(m string) string {
	if strings.HasPrefix(m, "image/") {
		return "image"
	}
	return m
}
