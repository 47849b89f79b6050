package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestComposeAndSplit(t *testing.T) {
	generated := []byte("package schema\n\ntype Artist struct{}\n")
	custom := []byte("\nfunc (Artist) Hello() string { return \"hi\" }\n")

	composed := ComposeFile(generated, custom)

	gotGenerated, sum, gotCustom, found := SplitGenerated(composed)
	assert.True(t, found)
	assert.Equal(t, string(generated), string(gotGenerated))
	assert.Equal(t, Checksum(generated), sum)
	assert.Equal(t, string(custom), string(gotCustom))
}

func TestSplitGeneratedNoMarker(t *testing.T) {
	_, _, _, found := SplitGenerated([]byte("package schema\n"))
	assert.False(t, found)
}

func TestFileWriter(t *testing.T) {
	generated := []byte("package schema\n\ntype Artist struct{}\n")
	regenerated := []byte("package schema\n\ntype Artist struct{ ID int64 }\n")

	t.Run("FreshFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "my", "schema", "artist.go")
		writer := FileWriter{}

		assert.NoError(t, writer.WriteFile(path, generated))

		content, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(content), string(generated)))
		assert.Contains(t, string(content), checksumMarker)
	})

	t.Run("RedumpPreservesCustomContent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "artist.go")
		writer := FileWriter{}
		assert.NoError(t, writer.WriteFile(path, generated))

		// Simulate a user adding helpers below the marker.
		custom := "\nfunc (Artist) Hello() string { return \"hi\" }\n"
		content, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.NoError(t, os.WriteFile(path, append(content, []byte(custom)...), 0o644))

		assert.NoError(t, writer.WriteFile(path, regenerated))

		content, err = os.ReadFile(path)
		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(content), string(regenerated)))
		assert.Contains(t, string(content), custom)
	})

	t.Run("ModifiedGeneratedPartIsRefused", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "artist.go")
		writer := FileWriter{}
		assert.NoError(t, writer.WriteFile(path, generated))

		// Edit the generated part without fixing the checksum.
		content, err := os.ReadFile(path)
		assert.NoError(t, err)
		tampered := strings.Replace(string(content), "Artist", "Painter", 1)
		assert.NoError(t, os.WriteFile(path, []byte(tampered), 0o644))

		err = writer.WriteFile(path, regenerated)
		assert.IsError(t, err, ErrModifiedFile)
	})

	t.Run("OverwriteModificationsReplacesEditedPart", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "artist.go")
		assert.NoError(t, FileWriter{}.WriteFile(path, generated))

		content, err := os.ReadFile(path)
		assert.NoError(t, err)
		custom := "\n// my note\n"
		tampered := strings.Replace(string(content), "Artist", "Painter", 1) + custom
		assert.NoError(t, os.WriteFile(path, []byte(tampered), 0o644))

		writer := FileWriter{OverwriteModifications: true}
		assert.NoError(t, writer.WriteFile(path, regenerated))

		content, err = os.ReadFile(path)
		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(content), string(regenerated)))
		assert.Contains(t, string(content), custom)
	})

	t.Run("ForeignFileIsRefused", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "artist.go")
		assert.NoError(t, os.WriteFile(path, []byte("package other\n"), 0o644))

		err := FileWriter{}.WriteFile(path, generated)
		assert.IsError(t, err, ErrForeignFile)
	})

	t.Run("ReallyEraseMyFilesClobbers", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "artist.go")
		assert.NoError(t, os.WriteFile(path, []byte("package other\n"), 0o644))

		writer := FileWriter{ReallyEraseMyFiles: true}
		assert.NoError(t, writer.WriteFile(path, generated))

		content, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(content), string(generated)))
		assert.False(t, strings.Contains(string(content), "package other"))
	})
}
