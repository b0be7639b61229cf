package fileurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSafeUploadName(t *testing.T) {
	denied := []string{".exe", ".sh", ".PHP"}

	for _, name := range []string{"ebook.pdf", "Album 2026.zip", "notes.tar.gz"} {
		assert.True(t, IsSafeUploadName(name, denied), name)
	}
	for _, name := range []string{"", "..", "../x.pdf", "a/b.pdf", `a\b.pdf`, "setup.EXE", "shell.php", "bad\x00.pdf"} {
		assert.False(t, IsSafeUploadName(name, denied), name)
	}
}
