package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lynx-api/internal/repository"
)

func TestUploadStoresClassImage(t *testing.T) {
	db := setupServiceDB(t)
	storage := &memoryStorage{}
	svc := NewUploadService(storage, repository.NewUploadRepository(db), 1, zerolog.Nop())

	result, err := svc.Upload(context.Background(), newFileHeader(t, "Sampul Kelas!.PNG", pngBytes), UploadOptions{OwnerID: "t1", Purpose: UploadPurposeClassImage})
	require.NoError(t, err)
	require.Equal(t, "https://res.cloudinary.test/classes/sampul-kelas.png", result.URL)
	require.Equal(t, "image/png", result.MimeType)
	require.Len(t, result.Checksum, 64)

	_, err = svc.Upload(context.Background(), newFileHeader(t, "materi.pdf", pdfBytes), UploadOptions{OwnerID: "t1", Purpose: UploadPurposeClassImage})
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)
	require.Equal(t, 1, storage.count())
}

func TestUploadFailures(t *testing.T) {
	svc := NewUploadService(nil, nil, 1, zerolog.Nop())
	_, err := svc.Upload(context.Background(), newFileHeader(t, "tugas.pdf", pdfBytes), UploadOptions{})
	require.ErrorIs(t, err, ErrUploadFailed)

	failing := NewUploadService(&memoryStorage{err: errors.New("Invalid API key")}, nil, 1, zerolog.Nop())
	_, err = failing.Upload(context.Background(), newFileHeader(t, "tugas.pdf", pdfBytes), UploadOptions{})
	require.ErrorIs(t, err, ErrUploadFailed)
	require.Contains(t, err.Error(), "Invalid API key")

	_, err = failing.Upload(context.Background(), nil, UploadOptions{})
	require.ErrorIs(t, err, ErrUploadMissing)
}
