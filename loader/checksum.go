package loader

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// checksumMarker separates the generated part of a dumped file from custom
// additions. Everything above the marker is replaced on the next dump,
// everything below it survives.
const checksumMarker = "// DO NOT MODIFY THIS OR ANYTHING ABOVE! md5sum:"

// Checksum returns the digest recorded in the marker line for a generated
// part.
func Checksum(generated []byte) string {
	sum := md5.Sum(generated)
	return hex.EncodeToString(sum[:])
}

// ComposeFile assembles the on-disk form: generated part, marker line,
// custom part.
func ComposeFile(generated, custom []byte) []byte {
	var buf bytes.Buffer
	buf.Write(generated)
	buf.WriteString(checksumMarker)
	buf.WriteString(Checksum(generated))
	buf.WriteByte('\n')
	buf.Write(custom)
	return buf.Bytes()
}

// SplitGenerated splits previously dumped content at the marker line. The
// returned sum is the digest the file claims for its generated part, which
// may differ from the actual digest after hand edits.
func SplitGenerated(content []byte) (generated []byte, sum string, custom []byte, found bool) {
	idx := bytes.Index(content, []byte(checksumMarker))
	if idx < 0 {
		return nil, "", nil, false
	}
	generated = content[:idx]
	rest := content[idx+len(checksumMarker):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 {
		return generated, string(bytes.TrimSpace(rest)), nil, true
	}
	return generated, string(bytes.TrimSpace(rest[:nl])), rest[nl+1:], true
}

// FileWriter writes dump files while honoring the custom-content contract.
// A file it has never written before is refused, as is a file whose
// generated part no longer matches its recorded checksum, unless the
// corresponding override option is set.
type FileWriter struct {
	OverwriteModifications bool
	ReallyEraseMyFiles     bool
}

// WriteFile refreshes the generated part of path and keeps any custom part.
// Preservation checks run before anything is written.
func (w FileWriter) WriteFile(path string, generated []byte) error {
	existing, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return w.write(path, ComposeFile(generated, nil))
	case err != nil:
		return fmt.Errorf("%w: %s: %v", ErrFileWriteFailed, path, err)
	}

	if w.ReallyEraseMyFiles {
		return w.write(path, ComposeFile(generated, nil))
	}

	prev, sum, custom, found := SplitGenerated(existing)
	if !found {
		return fmt.Errorf("%w: %s", ErrForeignFile, path)
	}
	if Checksum(prev) != sum && !w.OverwriteModifications {
		return fmt.Errorf("%w: %s", ErrModifiedFile, path)
	}
	return w.write(path, ComposeFile(generated, custom))
}

func (w FileWriter) write(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %s", ErrDirectoryCreateFailed, filepath.Dir(path))
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFileWriteFailed, path, err)
	}
	return nil
}
