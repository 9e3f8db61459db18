package sink

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const contentTypeOctetStream = "application/octet-stream"

// Key joins prefix and the base name of file with a slash.
func Key(prefix, file string) string {
	base := filepath.Base(file)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return base
	}
	return path.Join(prefix, base)
}

// Publish uploads every file read from fsys under Key(prefix, file).
// Files already present in the sink are skipped and reported with
// skipped set.
func Publish(ctx context.Context, s Sink, fsys afero.Fs, prefix string, files ...string) (published []Info, skipped []string, err error) {
	for _, file := range files {
		key := Key(prefix, file)
		f, err := fsys.Open(file)
		if err != nil {
			return published, skipped, fmt.Errorf("open %s: %w", file, err)
		}
		info, err := s.Put(ctx, key, f, contentTypeFor(file))
		closeErr := f.Close()
		switch {
		case errors.Is(err, ErrExists):
			skipped = append(skipped, key)
			continue
		case err != nil:
			return published, skipped, fmt.Errorf("publish %s: %w", key, err)
		case closeErr != nil:
			return published, skipped, fmt.Errorf("close %s: %w", file, closeErr)
		}
		published = append(published, info)
	}
	return published, skipped, nil
}

func contentTypeFor(file string) string {
	if strings.EqualFold(filepath.Ext(file), ".xml") {
		return ContentTypeXML
	}
	return contentTypeOctetStream
}
