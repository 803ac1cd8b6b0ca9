package service

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/repository"
)

func newClassFixture(t *testing.T) (*fixture, ClassService, *recordingPublisher) {
	t.Helper()

	f := newFixture(t, mustTime(t, "2024-05-10T05:00:00Z"))
	announcements := NewAnnouncementService(repository.NewAnnouncementRepository(f.db), f.classes, f.validate, zerolog.Nop())
	events := &recordingPublisher{}
	svc := NewClassService(f.classes, f.submissions, announcements, events, f.validate, zerolog.Nop())
	return f, svc, events
}

func TestClassCreateAndJoin(t *testing.T) {
	_, svc, events := newClassFixture(t)
	ctx := context.Background()
	teacher := Actor{ID: "t1", Name: "Bu Rina"}

	created, err := svc.Create(ctx, teacher, dto.ClassCreateRequest{
		Name:     "Matematika XII",
		Subject:  "Matematika",
		ImageURL: "https://res.cloudinary.test/classes/cover.png",
	})
	require.NoError(t, err)
	require.Len(t, created.Code, 6)
	require.Equal(t, DefaultClassDescription, created.Description)
	require.Equal(t, "Bu Rina", created.TeacherName)

	joined, err := svc.Join(ctx, Actor{ID: "u1", Name: "Siti"}, dto.JoinClassRequest{Code: strings.ToLower(created.Code)})
	require.NoError(t, err)
	require.Equal(t, created.ID, joined.ID)
	require.Equal(t, 1, joined.StudentCount)

	published := events.snapshot()
	require.Len(t, published, 1)
	require.Equal(t, dto.LiveEventAssignmentChanged, published[0].Type)

	_, err = svc.Join(ctx, Actor{ID: "u1"}, dto.JoinClassRequest{Code: created.Code})
	require.ErrorIs(t, err, ErrAlreadyJoined)

	classes, err := svc.ListForStudent(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, classes, 1)

	owned, err := svc.ListForTeacher(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	require.Equal(t, 1, owned[0].StudentCount)
}

func TestClassJoinUnknownCode(t *testing.T) {
	_, svc, _ := newClassFixture(t)

	_, err := svc.Join(context.Background(), Actor{ID: "u1"}, dto.JoinClassRequest{Code: "ZZZZZZ"})
	require.ErrorIs(t, err, ErrClassNotFound)

	_, err = svc.Join(context.Background(), Actor{ID: "u1"}, dto.JoinClassRequest{Code: "AB"})
	require.Error(t, err)
	require.True(t, isValidationErr(err))
}

func TestClassCreateRetriesTakenCodes(t *testing.T) {
	f, svc, _ := newClassFixture(t)
	f.seedClass(t, "taken", "t9", "Sejarah")

	codes := []string{"KTAKEN", "ABC234"}
	svc.(*classService).newCode = func() string {
		code := codes[0]
		codes = codes[1:]
		return code
	}

	created, err := svc.Create(context.Background(), Actor{ID: "t1"}, dto.ClassCreateRequest{
		Name:     "Kimia",
		ImageURL: "https://res.cloudinary.test/classes/kimia.png",
	})
	require.NoError(t, err)
	require.Equal(t, "ABC234", created.Code)
}

func TestClassCreateRequiresImage(t *testing.T) {
	_, svc, _ := newClassFixture(t)

	_, err := svc.Create(context.Background(), Actor{ID: "t1"}, dto.ClassCreateRequest{Name: "Kimia"})
	require.Error(t, err)
	require.True(t, isValidationErr(err))
}

func TestClassDetailChecksOwner(t *testing.T) {
	f, svc, _ := newClassFixture(t)
	f.seedClass(t, "c1", "t1", "Matematika", "u1")

	detail, err := svc.Detail(context.Background(), Actor{ID: "t1"}, "c1")
	require.NoError(t, err)
	require.Equal(t, "c1", detail.Class.ID)
	require.Empty(t, detail.Submissions)

	_, err = svc.Detail(context.Background(), Actor{ID: "t2"}, "c1")
	require.ErrorIs(t, err, ErrNotClassOwner)

	_, err = svc.Detail(context.Background(), Actor{ID: "t1"}, "missing")
	require.ErrorIs(t, err, ErrClassNotFound)
}

func TestGenerateClassCodeUsesUnambiguousAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := generateClassCode()
		require.Len(t, code, classCodeLength)
		require.False(t, strings.ContainsAny(code, "01IO"), code)
	}
}
