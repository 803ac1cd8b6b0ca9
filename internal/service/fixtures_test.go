package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/lynx-api/internal/document"
	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/models"
	"github.com/noah-isme/lynx-api/internal/repository"
	"github.com/noah-isme/lynx-api/internal/resolver"
)

type fixture struct {
	db          *gorm.DB
	loc         *time.Location
	now         time.Time
	validate    *validator.Validate
	users       repository.UserRepository
	classes     repository.ClassRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	board       AssignmentBoardService
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	loc, err := resolver.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	decoder, err := document.NewDecoder(loc, zerolog.Nop())
	require.NoError(t, err)

	db := setupServiceDB(t)
	f := &fixture{
		db:          db,
		loc:         loc,
		now:         now,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		users:       repository.NewUserRepository(db),
		classes:     repository.NewClassRepository(db),
		assignments: repository.NewAssignmentRepository(db),
		submissions: repository.NewSubmissionRepository(db),
	}

	res := resolver.New(resolver.Options{
		Location: loc,
		Logger:   zerolog.Nop(),
		Clock:    func() time.Time { return now },
	})
	f.board = NewAssignmentBoardService(f.classes, f.assignments, f.submissions, decoder, res, zerolog.Nop())
	return f
}

func (f *fixture) seedClass(t *testing.T, id, teacherID, subject string, students ...string) models.Class {
	t.Helper()

	class := models.Class{
		ID:        id,
		Name:      "Kelas " + id,
		Subject:   subject,
		Code:      strings.ToUpper("K" + id),
		TeacherID: teacherID,
		CreatedAt: f.now,
	}
	require.NoError(t, f.db.Create(&class).Error)

	for i, studentID := range students {
		member := models.ClassMember{
			ClassID:   id,
			StudentID: studentID,
			JoinedAt:  f.now.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, f.db.Create(&member).Error)
	}
	return class
}

func (f *fixture) seedAssignment(t *testing.T, classID, id, title, deadline string) {
	t.Helper()

	payload := datatypes.JSONMap{}
	if deadline != "" {
		payload["deadline"] = deadline
	}
	module := models.Module{
		ID:      id,
		ClassID: classID,
		Type:    models.ModuleTypeAssignment,
		Title:   title,
		Payload: payload,
	}
	require.NoError(t, f.db.Create(&module).Error)
}

func (f *fixture) seedSubmission(t *testing.T, classID, assignmentID, studentID, status string, score *float64) models.Submission {
	t.Helper()

	submittedAt := f.now.Add(-time.Hour)
	submission := models.Submission{
		AssignmentID: assignmentID,
		ClassID:      classID,
		StudentID:    studentID,
		Status:       status,
		SubmittedAt:  &submittedAt,
		FileURL:      "https://files.test/" + assignmentID,
		FileName:     assignmentID + ".pdf",
		Score:        score,
	}
	require.NoError(t, f.db.Create(&submission).Error)
	return submission
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type memoryStorage struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (m *memoryStorage) Upload(_ context.Context, subfolder, name string, reader io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, subfolder+"/"+name)
	return "https://res.cloudinary.test/" + subfolder + "/" + name, nil
}

func (m *memoryStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []dto.LiveEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, event dto.LiveEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) snapshot() []dto.LiveEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]dto.LiveEvent(nil), p.events...)
}

func newFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func floatPtr(v float64) *float64 {
	return &v
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}
