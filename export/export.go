// Package export writes built payloads to a destination directory together
// with copies of the documents they reference.
package export

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/jacoelho/proligent"
	perrors "github.com/jacoelho/proligent/errors"
	"github.com/jacoelho/proligent/pkg/xmltree"
)

// DefaultDir is the acquisition folder watched by the Proligent Integration Service.
const DefaultDir = `C:\Proligent\IntegrationService\Acquisition`

const (
	documentPrefix = "Document_"
	dirPerm        = 0o755
	filePerm       = 0o644
	osCreateFlags  = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
)

// Exporter saves payloads into Dir on Fs.
type Exporter struct {
	Fs    afero.Fs
	Dir   string
	Build proligent.BuildOptions
}

// New returns an Exporter. A nil fsys means the OS file system and an
// empty dir means DefaultDir.
func New(fsys afero.Fs, dir string, opts proligent.BuildOptions) *Exporter {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if strings.TrimSpace(dir) == "" {
		dir = DefaultDir
	}
	return &Exporter{Fs: fsys, Dir: dir, Build: opts}
}

// PayloadName returns the default payload file name, Proligent_<uuid>.xml.
func PayloadName() string {
	return "Proligent_" + uuid.NewString() + ".xml"
}

// Save builds b and writes it as Proligent_<uuid>.xml. It returns the
// payload path.
func (e *Exporter) Save(b proligent.Builder) (string, error) {
	return e.SaveAs(b, "")
}

// Payload lists the files written by Export.
type Payload struct {
	Path string
	// Documents holds the destination path of every document copy, in
	// document order and without duplicates.
	Documents []string
}

// Files returns the payload path followed by the document copies.
func (p Payload) Files() []string {
	return append([]string{p.Path}, p.Documents...)
}

// SaveAs builds b and writes it under fileName in the destination. Every
// referenced document is copied next to the payload as
// Document_<unique name>_<base name> and the payload refers to the copy.
// The entities themselves are left untouched.
func (e *Exporter) SaveAs(b proligent.Builder, fileName string) (string, error) {
	p, err := e.Export(b, fileName)
	if err != nil {
		return "", err
	}
	return p.Path, nil
}

// Export is SaveAs reporting every file it wrote or reused.
func (e *Exporter) Export(b proligent.Builder, fileName string) (Payload, error) {
	root, err := b.Build(e.Build)
	if err != nil {
		return Payload{}, err
	}
	if strings.TrimSpace(fileName) == "" {
		fileName = PayloadName()
	}
	if err := e.ensureDir(); err != nil {
		return Payload{}, err
	}
	docs, err := e.copyDocuments(root)
	if err != nil {
		return Payload{}, err
	}

	target := filepath.Join(e.Dir, fileName)
	f, err := e.Fs.OpenFile(target, osCreateFlags, filePerm)
	if err != nil {
		return Payload{}, fmt.Errorf("create payload %s: %w", target, err)
	}
	if err := xmltree.Encode(f, root, xmltree.DefaultEncodeOptions); err != nil {
		_ = f.Close()
		return Payload{}, fmt.Errorf("write payload %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return Payload{}, fmt.Errorf("close payload %s: %w", target, err)
	}
	return Payload{Path: target, Documents: docs}, nil
}

func (e *Exporter) ensureDir() error {
	info, err := e.Fs.Stat(e.Dir)
	switch {
	case err == nil && !info.IsDir():
		return perrors.Newf(perrors.ErrInvalidArgument, "destination %s is not a directory", e.Dir)
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		if err := e.Fs.MkdirAll(e.Dir, dirPerm); err != nil {
			return fmt.Errorf("create destination %s: %w", e.Dir, err)
		}
		return nil
	default:
		return fmt.Errorf("stat destination %s: %w", e.Dir, err)
	}
}

func (e *Exporter) copyDocuments(root *xmltree.Element) ([]string, error) {
	var copies []string
	seen := make(map[string]bool)
	for _, doc := range root.Descendants("Document") {
		src, ok := doc.Attr("FileName")
		if !ok || strings.TrimSpace(src) == "" {
			continue
		}
		name, err := e.copyDocument(src)
		if err != nil {
			return nil, err
		}
		doc.SetAttr("FileName", name)
		if dst := filepath.Join(e.Dir, name); !seen[dst] {
			seen[dst] = true
			copies = append(copies, dst)
		}
	}
	return copies, nil
}

// copyDocument copies src into the destination and returns the copy's base name.
func (e *Exporter) copyDocument(src string) (string, error) {
	info, err := e.Fs.Stat(src)
	if err != nil {
		return "", fmt.Errorf("copy document %s: %w", src, err)
	}
	if info.IsDir() {
		return "", perrors.Newf(perrors.ErrInvalidArgument, "document %s is a directory", src)
	}
	unique, err := UniqueName(e.Fs, src)
	if err != nil {
		return "", err
	}
	name := documentPrefix + unique + "_" + filepath.Base(src)
	dst := filepath.Join(e.Dir, name)
	if exists, err := afero.Exists(e.Fs, dst); err != nil {
		return "", fmt.Errorf("stat document copy %s: %w", dst, err)
	} else if exists {
		return name, nil
	}

	in, err := e.Fs.Open(src)
	if err != nil {
		return "", fmt.Errorf("open document %s: %w", src, err)
	}
	defer in.Close()
	out, err := e.Fs.OpenFile(dst, osCreateFlags, filePerm)
	if err != nil {
		return "", fmt.Errorf("create document copy %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("copy document %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close document copy %s: %w", dst, err)
	}
	return name, nil
}
