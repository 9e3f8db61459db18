// Package validator checks Datawarehouse documents against the XML Schema
// and reports the first violation with the element path that produced it.
package validator

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/jacoelho/xsd"

	perrors "github.com/jacoelho/proligent/errors"
	"github.com/jacoelho/proligent/schema"
)

// Validator holds a compiled schema. It is safe for concurrent use; every
// call runs in its own session.
type Validator struct {
	schema    *xsd.Schema
	required  requiredIndex
	fragments []string
}

// New compiles every *.xsd file found below dir in fsys.
func New(fsys fs.FS, dir string) (*Validator, error) {
	fragments, err := collectFragments(fsys, dir)
	if err != nil {
		return nil, err
	}
	set := xsd.NewSchemaSet()
	for _, location := range fragments {
		if err := set.AddFS(fsys, location); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", location, err)
		}
	}
	compiled, err := set.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", dir, err)
	}
	required, err := buildRequiredIndex(fsys, fragments)
	if err != nil {
		return nil, err
	}
	return &Validator{schema: compiled, required: required, fragments: fragments}, nil
}

// NewDefault compiles the embedded Datawarehouse schema.
func NewDefault() (*Validator, error) {
	return New(schema.FS, schema.Dir)
}

// NewDir compiles the schema fragments below a directory on disk.
func NewDir(dir string) (*Validator, error) {
	return New(os.DirFS(dir), ".")
}

// Fragments returns the schema locations the validator was compiled from.
func (v *Validator) Fragments() []string {
	return append([]string(nil), v.fragments...)
}

// Validate checks the document at path on the local file system.
// A schema violation is returned as *errors.Validation; read failures wrap
// the underlying error so fs.ErrNotExist remains detectable.
func (v *Validator) Validate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read xml %s: %w", path, err)
	}
	return v.ValidateBytes(data, path)
}

// ValidateFS checks the document at name in fsys.
func (v *Validator) ValidateFS(fsys fs.FS, name string) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read xml %s: %w", name, err)
	}
	return v.ValidateBytes(data, name)
}

// ValidateReader checks the document read from r. name labels the document
// in reported violations.
func (v *Validator) ValidateReader(r io.Reader, name string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read xml %s: %w", name, err)
	}
	return v.ValidateBytes(data, name)
}

// ValidateBytes checks an in-memory document.
func (v *Validator) ValidateBytes(data []byte, name string) error {
	s := v.newSession(data, name)
	return s.run()
}

// ValidateSafe is Validate without an error return: every failure, schema
// or I/O, is folded into the Result.
func (v *Validator) ValidateSafe(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return failedResult(fmt.Errorf("read xml %s: %w", path, err), "")
	}
	return v.ValidateBytesSafe(data, path)
}

// ValidateBytesSafe is ValidateBytes without an error return.
func (v *Validator) ValidateBytesSafe(data []byte, name string) Result {
	s := v.newSession(data, name)
	if err := s.run(); err != nil {
		return failedResult(err, s.fingerprint)
	}
	return Result{IsValid: true, Message: SuccessMessage, Fingerprint: s.fingerprint}
}

func (v *Validator) newSession(data []byte, name string) *session {
	return &session{schema: v.schema, required: v.required, data: data, name: name, input: bytes.NewReader(data)}
}

func collectFragments(fsys fs.FS, dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	var out []string
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(path.Ext(p), ".xsd") {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrResourceNotFound, err, "no xsd found in "+dir)
	}
	if len(out) == 0 {
		return nil, perrors.New(perrors.ErrResourceNotFound, "no xsd found in "+dir)
	}
	sort.Strings(out)
	return out, nil
}
