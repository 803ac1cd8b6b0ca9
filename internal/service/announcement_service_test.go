package service

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/repository"
)

func isValidationErr(err error) bool {
	_, ok := err.(validator.ValidationErrors)
	return ok
}

func TestMakeExcerpt(t *testing.T) {
	require.Equal(t, "pendek", makeExcerpt("  pendek ", 180))

	long := strings.Repeat("a", 179) + " bcd"
	require.Equal(t, strings.Repeat("a", 179)+"...", makeExcerpt(long, 180))

	require.Equal(t, "ééé...", makeExcerpt("éééé", 3))
}

func TestAnnouncementCreateAndListForStudent(t *testing.T) {
	f := newFixture(t, mustTime(t, "2024-05-10T05:00:00Z"))
	f.seedClass(t, "c1", "t1", "Matematika", "u1")
	f.seedClass(t, "c2", "t2", "", "u1")

	svc := NewAnnouncementService(repository.NewAnnouncementRepository(f.db), f.classes, f.validate, zerolog.Nop())
	ctx := context.Background()

	body := "<p>Ujian &amp; remedial</p>" + strings.Repeat("x", 200) + "<script>alert(1)</script>"
	created, err := svc.Create(ctx, "t1", dto.AnnouncementCreateRequest{ClassID: "c1", Title: "Ujian", Content: body})
	require.NoError(t, err)
	require.Equal(t, "Matematika", created.ClassName)
	require.NotContains(t, created.Content, "<script>")
	require.True(t, strings.HasPrefix(created.Excerpt, "Ujian & remedial"))
	require.True(t, strings.HasSuffix(created.Excerpt, "..."))

	_, err = svc.Create(ctx, "t1", dto.AnnouncementCreateRequest{ClassID: "c2", Title: "Bukan kelasku", Content: "isi"})
	require.ErrorIs(t, err, ErrNotClassOwner)

	_, err = svc.Create(ctx, "t1", dto.AnnouncementCreateRequest{ClassID: "nope", Title: "x", Content: "isi"})
	require.ErrorIs(t, err, ErrClassNotFound)

	_, err = svc.Create(ctx, "t2", dto.AnnouncementCreateRequest{ClassID: "c2", Title: "Fisika", Content: "Praktikum"})
	require.NoError(t, err)

	items, err := svc.ListForStudent(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	names := map[string]string{}
	for _, item := range items {
		names[item.ClassID] = item.ClassName
	}
	require.Equal(t, "Matematika", names["c1"])
	require.Equal(t, "Kelas c2", names["c2"], "class name falls back when subject is empty")
}
