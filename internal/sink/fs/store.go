// Package fs implements a sink that copies payloads into a directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/jacoelho/proligent/internal/sink"
)

const (
	dirPerm   = 0o755
	tmpPrefix = ".tmp-"
)

// Store implements sink.Sink on a directory of fsys. Keys map to relative
// file paths under the root.
type Store struct {
	fs   afero.Fs
	root string
}

// New returns a store rooted at root, creating it if needed. A nil fsys
// means the OS file system.
func New(fsys afero.Fs, root string) (*Store, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("fs sink root required")
	}
	if err := fsys.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("create sink root %s: %w", root, err)
	}
	return &Store{fs: fsys, root: root}, nil
}

func (s *Store) Driver() sink.Driver { return sink.DriverFilesystem }

// Root returns the directory objects are written to.
func (s *Store) Root() string { return s.root }

// sanitizeKey forbids traversal and absolute keys.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key contains '..'")
	}
	if strings.HasPrefix(key, "/") || filepath.IsAbs(key) {
		return "", fmt.Errorf("invalid absolute key")
	}
	return filepath.ToSlash(filepath.Clean(key)), nil
}

func (s *Store) pathFor(key string) (string, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(k)), nil
}

// Put writes r to a temporary file next to the target and renames it into
// place.
func (s *Store) Put(_ context.Context, key string, r io.Reader, contentType string) (sink.Info, error) {
	target, err := s.pathFor(key)
	if err != nil {
		return sink.Info{}, err
	}
	if _, err := s.fs.Stat(target); err == nil {
		return sink.Info{}, fmt.Errorf("%s: %w", key, sink.ErrExists)
	}
	dir := filepath.Dir(target)
	if err := s.fs.MkdirAll(dir, dirPerm); err != nil {
		return sink.Info{}, err
	}
	tmp, err := afero.TempFile(s.fs, dir, tmpPrefix+"*")
	if err != nil {
		return sink.Info{}, err
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = s.fs.Remove(tmp.Name())
		}
	}()

	size, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return sink.Info{}, err
	}
	if err := tmp.Close(); err != nil {
		return sink.Info{}, err
	}
	if err := s.fs.Rename(tmp.Name(), target); err != nil {
		return sink.Info{}, err
	}
	renamed = true
	return sink.Info{Key: key, Size: size, ContentType: contentType, LastModified: time.Now().UTC()}, nil
}

// Get opens the object stored under key.
func (s *Store) Get(_ context.Context, key string) (sink.Info, io.ReadCloser, error) {
	target, err := s.pathFor(key)
	if err != nil {
		return sink.Info{}, nil, err
	}
	f, err := s.fs.Open(target)
	if errors.Is(err, os.ErrNotExist) {
		return sink.Info{}, nil, fmt.Errorf("%s: %w", key, sink.ErrNotFound)
	}
	if err != nil {
		return sink.Info{}, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return sink.Info{}, nil, err
	}
	return s.info(key, st), f, nil
}

// List returns the objects whose key starts with prefix, sorted by key.
func (s *Store) List(_ context.Context, prefix string) ([]sink.Info, error) {
	var infos []sink.Info
	err := afero.Walk(s.fs, s.root, func(p string, st iofs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if st.IsDir() || strings.HasPrefix(st.Name(), tmpPrefix) {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, s.info(key, st))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *Store) info(key string, st iofs.FileInfo) sink.Info {
	info := sink.Info{Key: key, Size: st.Size(), LastModified: st.ModTime().UTC()}
	if strings.EqualFold(filepath.Ext(key), ".xml") {
		info.ContentType = sink.ContentTypeXML
	}
	return info
}
