package cloudinary

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPublicID(t *testing.T) {
	require.Regexp(t, regexp.MustCompile(`^Laporan-Praktikum-[0-9a-f]{8}$`), buildPublicID("Laporan Praktikum.pdf"))
	require.Regexp(t, regexp.MustCompile(`^file-[0-9a-f]{8}$`), buildPublicID("../???.png"))
}

func TestJoinFolder(t *testing.T) {
	require.Equal(t, "synclearner/submissions", joinFolder("synclearner", "/submissions/"))
	require.Equal(t, "synclearner", joinFolder("synclearner", ""))
	require.Equal(t, "classes", joinFolder("", "classes"))
}
