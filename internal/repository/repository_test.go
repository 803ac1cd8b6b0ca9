package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/lynx-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func TestClassRepositoryMembership(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassRepository(db)
	ctx := context.Background()

	first := models.Class{Name: "Biologi", Code: "BIO123", TeacherID: "t1"}
	second := models.Class{Name: "Kimia", Code: "KIM456", TeacherID: "t1"}
	require.NoError(t, repo.Create(ctx, &first))
	require.NoError(t, repo.Create(ctx, &second))

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.AddMember(ctx, &models.ClassMember{ClassID: second.ID, StudentID: "s1", JoinedAt: base}))
	require.NoError(t, repo.AddMember(ctx, &models.ClassMember{ClassID: first.ID, StudentID: "s1", JoinedAt: base.Add(time.Hour)}))

	// joining twice violates the composite key and must not bump the count
	require.Error(t, repo.AddMember(ctx, &models.ClassMember{ClassID: first.ID, StudentID: "s1", JoinedAt: base}))

	classes, err := repo.ListByStudent(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, classes, 2)
	require.Equal(t, second.ID, classes[0].ID)

	stored, err := repo.GetByCode(ctx, "BIO123")
	require.NoError(t, err)
	require.Equal(t, 1, stored.StudentCount)

	member, err := repo.IsMember(ctx, first.ID, "s1")
	require.NoError(t, err)
	require.True(t, member)

	member, err = repo.IsMember(ctx, first.ID, "s2")
	require.NoError(t, err)
	require.False(t, member)

	exists, err := repo.CodeExists(ctx, "KIM456")
	require.NoError(t, err)
	require.True(t, exists)

	owned, err := repo.ListByTeacher(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, owned, 2)
}

func TestAssignmentRepositoryFiltersByClassAndType(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Module{ClassID: "c1", Type: models.ModuleTypeAssignment, Title: "Essay", Payload: datatypes.JSONMap{"deadline": "2024-05-20"}}).Error)
	require.NoError(t, db.Create(&models.Module{ClassID: "c1", Type: models.ModuleTypeMaterial, Title: "Bab 1"}).Error)
	require.NoError(t, db.Create(&models.Module{ClassID: "c2", Type: models.ModuleTypeAssignment, Title: "Other"}).Error)
	require.NoError(t, db.Create(&models.Chapter{ClassID: "c1", Title: "Bab", Subchapters: datatypes.JSON(`[]`)}).Error)

	modules, err := repo.ListModules(ctx, []string{"c1"})
	require.NoError(t, err)
	require.Len(t, modules, 1)
	require.Equal(t, "Essay", modules[0].Title)
	require.Equal(t, "2024-05-20", modules[0].Payload["deadline"])

	chapters, err := repo.ListChapters(ctx, []string{"c1", "c2"})
	require.NoError(t, err)
	require.Len(t, chapters, 1)

	none, err := repo.ListModules(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestSubmissionRepositoryKeepsInsertionOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"sub-b", "sub-a"} {
		submission := models.Submission{
			ID:           id,
			AssignmentID: "a1",
			StudentID:    "s1",
			Status:       models.SubmissionStatusSubmitted,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, &submission))
	}
	require.NoError(t, repo.Create(ctx, &models.Submission{AssignmentID: "a1", StudentID: "s2", Status: "graded", CreatedAt: base}))

	studentID := "s1"
	items, err := repo.List(ctx, SubmissionFilter{StudentID: &studentID})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "sub-b", items[0].ID)

	status := models.SubmissionStatusGraded
	graded, err := repo.List(ctx, SubmissionFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, graded, 1)

	first, err := repo.GetByAssignmentAndStudent(ctx, "a1", "s1")
	require.NoError(t, err)
	require.Equal(t, "sub-b", first.ID)

	score := 88.0
	first.Score = &score
	first.Status = models.SubmissionStatusGraded
	require.NoError(t, repo.Update(ctx, &first))

	reloaded, err := repo.GetByID(ctx, "sub-b")
	require.NoError(t, err)
	require.True(t, reloaded.IsGraded())
	require.InDelta(t, 88.0, *reloaded.Score, 0.001)

	_, err = repo.GetByAssignmentAndStudent(ctx, "a1", "s9")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAnnouncementRepositoryLatestForClasses(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnnouncementRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		classID := "c1"
		if i%2 == 1 {
			classID = "c2"
		}
		require.NoError(t, repo.Create(ctx, &models.Announcement{
			ClassID:   classID,
			Title:     fmt.Sprintf("info %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.Announcement{ClassID: "c3", Title: "hidden", CreatedAt: base.Add(48 * time.Hour)}))

	items, err := repo.LatestForClasses(ctx, []string{"c1", "c2"}, 5)
	require.NoError(t, err)
	require.Len(t, items, 5)
	require.Equal(t, "info 6", items[0].Title)
	require.Equal(t, "info 2", items[4].Title)
}

func TestChatRepositoryRoomsAndMessages(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertRoom(ctx, &models.ChatRoom{ID: "r1", UserID: "s1", Title: "Fotosintesis", LastUpdated: base, CreatedAt: base}))
	require.NoError(t, repo.UpsertRoom(ctx, &models.ChatRoom{ID: "r2", UserID: "s1", Title: "Hukum Newton", LastUpdated: base.Add(time.Hour), CreatedAt: base}))
	require.NoError(t, repo.UpsertRoom(ctx, &models.ChatRoom{ID: "r1", UserID: "s1", Title: "ignored", LastUpdated: base.Add(2 * time.Hour)}))

	rooms, err := repo.ListRooms(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	require.Equal(t, "r1", rooms[0].ID)
	require.Equal(t, "Fotosintesis", rooms[0].Title)

	require.NoError(t, repo.SaveMessage(ctx, &models.ChatMessage{RoomID: "r1", Role: models.ChatRoleUser, Content: "halo", CreatedAt: base}))
	require.NoError(t, repo.SaveMessage(ctx, &models.ChatMessage{RoomID: "r1", Role: models.ChatRoleModel, Content: "hai", CreatedAt: base.Add(time.Second)}))

	messages, err := repo.ListMessages(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, models.ChatRoleUser, messages[0].Role)
}

func TestUserRepositoryUpsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.User{ID: "s1", Name: "Siti", Role: models.RoleStudent}))
	require.NoError(t, repo.Upsert(ctx, &models.User{ID: "s1", Name: "Siti Aminah", Role: models.RoleStudent, GradeLevel: "11 SMA"}))

	user, err := repo.GetByID(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "Siti Aminah", user.Name)
	require.Equal(t, "11 SMA", user.GradeLevel)
}
