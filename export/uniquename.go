package export

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"

	perrors "github.com/jacoelho/proligent/errors"
)

// UniqueName derives a UUID-shaped name from a file's base name, compared
// without case, and the SHA-256 of its content. The same name and content
// always give the same result.
func UniqueName(fsys afero.Fs, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", fmt.Errorf("open document %s: %w", path, err)
	}
	defer f.Close()
	return UniqueNameFromReader(filepath.Base(path), f)
}

// UniqueNameFromReader is UniqueName over already opened content.
func UniqueNameFromReader(fileName string, r io.Reader) (string, error) {
	canonical, err := canonicalFileName(fileName)
	if err != nil {
		return "", err
	}
	content := sha256.New()
	if _, err := io.Copy(content, r); err != nil {
		return "", fmt.Errorf("hash document %s: %w", fileName, err)
	}
	digest := sha256.Sum256([]byte(canonical + "|" + hex.EncodeToString(content.Sum(nil))))

	var id uuid.UUID
	copy(id[:], digest[:16])
	id[6] = id[6]&0x0f | 0x40
	id[8] = id[8]&0x3f | 0x80
	return id.String(), nil
}

func canonicalFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if s == "" || s == "." || s == string(filepath.Separator) {
		return "", perrors.New(perrors.ErrInvalidArgument, "file path must contain a file name")
	}
	s = strings.ToLower(norm.NFC.String(s))
	if strings.ContainsAny(s, `/\`) {
		return "", perrors.Newf(perrors.ErrInvalidArgument, "file name %q must not contain path separators", name)
	}
	return s, nil
}
