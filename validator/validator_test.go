package validator

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/jacoelho/proligent/errors"
)

func defaultValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewDefault()
	require.NoError(t, err)
	return v
}

func TestValidateValidDocument(t *testing.T) {
	v := defaultValidator(t)
	require.NoError(t, v.Validate(filepath.Join("testdata", "valid.xml")))

	res := v.ValidateSafe(filepath.Join("testdata", "valid.xml"))
	assert.True(t, res.IsValid)
	assert.Equal(t, SuccessMessage, res.Message)
	assert.Equal(t, "00000000-0000-0000-0000-000000000006", res.Fingerprint)
}

func TestValidateMissingRequiredAttribute(t *testing.T) {
	v := defaultValidator(t)
	file := filepath.Join("testdata", "invalid_product_unit_missing_full_name.xml")

	err := v.Validate(file)
	require.Error(t, err)
	assert.ErrorIs(t, err, perrors.ErrSchemaValidation)
	violation, ok := perrors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, violation.Message, "ProductFullName")
	assert.Equal(t, "/Proligent.Datawarehouse/ProductUnit", violation.Path)
	assert.Equal(t, file, violation.Document)
	assert.Equal(t, 3, violation.Line)

	res := v.ValidateSafe(file)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Message, "ProductFullName")
	assert.Contains(t, res.Path, "ProductUnit")
	assert.Equal(t, "00000000-0000-0000-0000-000000000006", res.Fingerprint)
}

func TestValidateInvalidEnumeration(t *testing.T) {
	v := defaultValidator(t)
	res := v.ValidateSafe(filepath.Join("testdata", "invalid_status.xml"))
	assert.False(t, res.IsValid)
	assert.Equal(t, "/Proligent.Datawarehouse/TopProcessRun", res.Path)
	assert.Positive(t, res.Line)
	assert.Equal(t, "00000000-0000-0000-0000-000000000007", res.Fingerprint)
}

func TestValidateMissingFile(t *testing.T) {
	v := defaultValidator(t)
	err := v.Validate(filepath.Join("testdata", "missing.xml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	res := v.ValidateSafe(filepath.Join("testdata", "missing.xml"))
	assert.False(t, res.IsValid)
	assert.NotEmpty(t, res.Message)
	assert.NotEmpty(t, res.Reason)
}

func TestValidateMalformedDocument(t *testing.T) {
	v := defaultValidator(t)
	res := v.ValidateBytesSafe([]byte(`<Proligent.Datawarehouse`), "broken.xml")
	assert.False(t, res.IsValid)
	assert.NotEmpty(t, res.Message)
}

func TestValidateReader(t *testing.T) {
	v := defaultValidator(t)
	data, err := os.ReadFile(filepath.Join("testdata", "valid.xml"))
	require.NoError(t, err)
	require.NoError(t, v.ValidateReader(strings.NewReader(string(data)), "valid.xml"))
}

func TestNewWithoutFragments(t *testing.T) {
	fsys := fstest.MapFS{
		"xsd/readme.txt": &fstest.MapFile{Data: []byte("nothing here")},
	}
	_, err := New(fsys, "xsd")
	require.Error(t, err)
	assert.ErrorIs(t, err, perrors.ErrResourceNotFound)
	assert.Contains(t, err.Error(), "no xsd found in xsd")

	_, err = New(fsys, "absent")
	assert.ErrorIs(t, err, perrors.ErrResourceNotFound)
}

func TestNewCollectsNestedFragments(t *testing.T) {
	fsys := fstest.MapFS{
		"schemas/nested/root.XSD": &fstest.MapFile{Data: []byte(`<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="urn:test"
           elementFormDefault="qualified">
  <xs:element name="root">
    <xs:complexType>
      <xs:attribute name="id" type="xs:string" use="required"/>
    </xs:complexType>
  </xs:element>
</xs:schema>`)},
	}
	v, err := New(fsys, "schemas")
	require.NoError(t, err)
	assert.Equal(t, []string{"schemas/nested/root.XSD"}, v.Fragments())

	err = v.ValidateBytes([]byte(`<root xmlns="urn:test"/>`), "doc.xml")
	require.Error(t, err)
	violation, ok := perrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "/root", violation.Path)
	assert.Contains(t, violation.Message, "id")
}

func TestValidateConcurrent(t *testing.T) {
	v := defaultValidator(t)
	valid, err := os.ReadFile(filepath.Join("testdata", "valid.xml"))
	require.NoError(t, err)
	invalid, err := os.ReadFile(filepath.Join("testdata", "invalid_product_unit_missing_full_name.xml"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				if err := v.ValidateBytes(valid, "valid.xml"); err != nil {
					errs <- err
				}
				return
			}
			res := v.ValidateBytesSafe(invalid, "invalid.xml")
			if res.IsValid || !strings.Contains(res.Path, "ProductUnit") {
				errs <- errors.New("unexpected result for invalid document: " + res.Message)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestSessionIsSingleUse(t *testing.T) {
	v := defaultValidator(t)
	s := v.newSession([]byte(`<x/>`), "x.xml")
	_ = s.run()
	err := s.run()
	assert.ErrorIs(t, err, perrors.ErrInvalidOperation)
}
