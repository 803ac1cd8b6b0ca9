package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/lynx-api/internal/config"
	"github.com/noah-isme/lynx-api/internal/document"
	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/handler"
	"github.com/noah-isme/lynx-api/internal/middleware"
	"github.com/noah-isme/lynx-api/internal/models"
	"github.com/noah-isme/lynx-api/internal/repository"
	"github.com/noah-isme/lynx-api/internal/resolver"
	"github.com/noah-isme/lynx-api/internal/router"
	"github.com/noah-isme/lynx-api/internal/service"
	"github.com/noah-isme/lynx-api/pkg/ai"
)

const testSecret = "handler-test-secret"

type testAPI struct {
	app     *fiber.App
	db      *gorm.DB
	storage *memoryStorage
}

type memoryStorage struct {
	mu    sync.Mutex
	files []string
}

func (m *memoryStorage) Upload(_ context.Context, subfolder, name string, reader io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append(m.files, subfolder+"/"+name)
	return "https://res.cloudinary.test/" + subfolder + "/" + name, nil
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
	Message string          `json:"message"`
}

// newTestAPI builds the full router over sqlite and miniredis. The clock is frozen
// at 2024-05-10 12:00 Asia/Jakarta.
func newTestAPI(t *testing.T, relay ai.ChatRelay) *testAPI {
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

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	logger := zerolog.Nop()
	loc, err := resolver.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	decoder, err := document.NewDecoder(loc, logger)
	require.NoError(t, err)

	now := time.Date(2024, 5, 10, 5, 0, 0, 0, time.UTC)
	res := resolver.New(resolver.Options{Location: loc, Logger: logger, Clock: func() time.Time { return now }})
	validate := validator.New(validator.WithRequiredStructEnabled())
	storage := &memoryStorage{}

	users := repository.NewUserRepository(db)
	classes := repository.NewClassRepository(db)
	submissions := repository.NewSubmissionRepository(db)

	board := service.NewAssignmentBoardService(classes, repository.NewAssignmentRepository(db), submissions, decoder, res, logger)
	live := service.NewLiveService(board, nil, "", nil, logger)
	announcements := service.NewAnnouncementService(repository.NewAnnouncementRepository(db), classes, validate, logger)
	dashboard := service.NewStudentDashboardService(classes, announcements, board, redisClient, time.Minute, loc, logger)
	uploads := service.NewUploadService(storage, repository.NewUploadRepository(db), 2, logger)
	live.AddListener(func(ctx context.Context, event dto.LiveEvent) {
		dashboard.Invalidate(ctx, event.StudentID)
	})

	var analyzer ai.Analyzer
	cfg := config.Config{AppName: "lynx-test", Timezone: "Asia/Jakarta"}

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		StudentDashboardHandler: handler.NewStudentDashboardHandler(dashboard, service.NewGradesService(board, loc, logger), validate, logger),
		AssignmentHandler:       handler.NewAssignmentHandler(board, validate, logger),
		SubmissionHandler:       handler.NewSubmissionHandler(service.NewSubmissionService(submissions, board, uploads, live, validate, logger), logger),
		ClassHandler:            handler.NewClassHandler(service.NewClassService(classes, submissions, announcements, live, validate, logger), logger),
		AnnouncementHandler:     handler.NewAnnouncementHandler(announcements, logger),
		GradingHandler:          handler.NewGradingHandler(service.NewGradingService(submissions, classes, live, validate, logger), validate, logger),
		UploadHandler:           handler.NewUploadHandler(uploads, logger),
		ProfileHandler:          handler.NewProfileHandler(service.NewProfileService(users, logger), logger),
		AnalysisHandler:         handler.NewAnalysisHandler(service.NewAnalysisService(analyzer, users, redisClient, time.Hour, time.Second, logger), logger),
		ChatHandler:             handler.NewChatHandler(service.NewChatService(repository.NewChatRepository(db), relay, 2, time.Second, logger), validate, logger),
		LiveHandler:             handler.NewLiveHandler(live, logger),
		JWTMiddleware:           middleware.JWTProtected(testSecret),
	})

	api := &testAPI{app: app, db: db, storage: storage}
	api.seed(t)
	return api
}

// seed creates class c1 owned by t1 with student u1, two open assignments and a
// class for another teacher.
func (a *testAPI) seed(t *testing.T) {
	t.Helper()

	joined := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, a.db.Create(&models.Class{ID: "c1", Name: "XII IPA 1", Subject: "Matematika", Code: "MAT123", TeacherID: "t1", StudentCount: 1}).Error)
	require.NoError(t, a.db.Create(&models.Class{ID: "c2", Name: "XII IPA 2", Subject: "Fisika", Code: "FIS123", TeacherID: "t2"}).Error)
	require.NoError(t, a.db.Create(&models.ClassMember{ClassID: "c1", StudentID: "u1", StudentName: "Siti", JoinedAt: joined}).Error)

	modules := []models.Module{
		{ID: "a1", ClassID: "c1", Type: models.ModuleTypeAssignment, Title: "Esai Aljabar", Payload: datatypes.JSONMap{"deadline": "2024-05-12T10:00:00Z"}},
		{ID: "a2", ClassID: "c1", Type: models.ModuleTypeAssignment, Title: "Laporan Statistik", Payload: datatypes.JSONMap{
			"deadline":    "2024-05-20T10:00:00Z",
			"attachments": []interface{}{map[string]interface{}{"name": "Rubrik", "url": "https://cdn.test/rubrik.pdf"}},
		}},
	}
	for i := range modules {
		require.NoError(t, a.db.Create(&modules[i]).Error)
	}
}

func token(t *testing.T, subject, role, name string) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"name": name,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (a *testAPI) do(t *testing.T, req *http.Request, bearer string) (int, apiResponse) {
	t.Helper()

	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func (a *testAPI) get(t *testing.T, path, bearer string) (int, apiResponse) {
	t.Helper()
	return a.do(t, httptest.NewRequest(http.MethodGet, path, nil), bearer)
}

func (a *testAPI) sendJSON(t *testing.T, method, path, bearer string, payload interface{}) (int, apiResponse) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return a.do(t, req, bearer)
}

func (a *testAPI) sendFile(t *testing.T, path, bearer string, fields map[string]string, fileName string, content []byte) (int, apiResponse) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return a.do(t, req, bearer)
}
