package export

import (
	"bytes"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/proligent"
	perrors "github.com/jacoelho/proligent/errors"
	"github.com/jacoelho/proligent/pkg/xmltree"
	"github.com/jacoelho/proligent/validator"
)

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
}

func readPayload(t *testing.T, fsys afero.Fs, path string) *xmltree.Element {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	root, err := xmltree.Parse(bytes.NewReader(data))
	require.NoError(t, err)
	return root
}

func TestSaveCopiesProductUnitDocument(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/src/product_document.txt", "product-content")

	product, err := proligent.NewProductUnit(proligent.ProductUnitOptions{
		Identifier:   "Test",
		FullName:     "Product/Test",
		Manufacturer: "Tester",
		Documents:    []proligent.Document{proligent.NewDocument("/src/product_document.txt")},
	})
	require.NoError(t, err)
	dw := proligent.NewDataWarehouse(proligent.DataWarehouseOptions{ProductUnit: product})

	exp := New(fsys, "/dest", proligent.BuildOptions{Location: time.UTC})
	saved, err := exp.Save(dw)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(saved), "Proligent_"))
	assert.Equal(t, ".xml", filepath.Ext(saved))

	entries, err := afero.ReadDir(fsys, "/dest")
	require.NoError(t, err)
	var copies []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), documentPrefix) {
			copies = append(copies, e.Name())
		}
	}
	require.Len(t, copies, 1)
	assert.True(t, strings.HasSuffix(copies[0], "_product_document.txt"))

	content, err := afero.ReadFile(fsys, filepath.Join("/dest", copies[0]))
	require.NoError(t, err)
	assert.Equal(t, "product-content", string(content))

	root := readPayload(t, fsys, saved)
	docs := root.Descendants("Document")
	require.Len(t, docs, 1)
	name, _ := docs[0].Attr("FileName")
	assert.Equal(t, copies[0], name)

	assert.Equal(t, "/src/product_document.txt", product.Documents()[0].FileName)
}

func TestSaveCopiesNestedDocuments(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/src/step_document.txt", "step-content")
	writeFile(t, fsys, "/src/sequence_document.txt", "sequence-content")

	step, err := proligent.NewStepRun(proligent.StepRunOptions{Name: "StepA"})
	require.NoError(t, err)
	step.AddDocument(proligent.NewDocument("/src/step_document.txt"))
	step.Complete(proligent.StatusPass)

	seq, err := proligent.NewSequenceRun(proligent.SequenceRunOptions{Name: "SeqA", Steps: []*proligent.StepRun{step}})
	require.NoError(t, err)
	seq.AddDocument(proligent.NewDocument("/src/sequence_document.txt"))

	op, err := proligent.NewOperationRun(proligent.OperationRunOptions{
		Station:   "Station/Test",
		Name:      "OpA",
		Sequences: []*proligent.SequenceRun{seq},
	})
	require.NoError(t, err)
	process := proligent.NewProcessRun(proligent.ProcessRunOptions{Name: "ProcA", Operations: []*proligent.OperationRun{op}})
	dw := proligent.NewDataWarehouse(proligent.DataWarehouseOptions{ProcessRun: process})

	saved, err := New(fsys, "/dest", proligent.BuildOptions{Location: time.UTC}).SaveAs(dw, "payload.xml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/dest", "payload.xml"), saved)

	root := readPayload(t, fsys, saved)
	docs := root.Descendants("Document")
	require.Len(t, docs, 2)
	for _, doc := range docs {
		name, _ := doc.Attr("FileName")
		assert.True(t, strings.HasPrefix(name, documentPrefix), name)
		exists, err := afero.Exists(fsys, filepath.Join("/dest", name))
		require.NoError(t, err)
		assert.True(t, exists, name)
	}
}

func TestSaveMissingDocument(t *testing.T) {
	fsys := afero.NewMemMapFs()
	unit, err := proligent.NewProductUnit(proligent.ProductUnitOptions{
		FullName:  "P",
		Documents: []proligent.Document{proligent.NewDocument("/src/missing.txt")},
	})
	require.NoError(t, err)
	dw := proligent.NewDataWarehouse(proligent.DataWarehouseOptions{ProductUnit: unit})

	_, err = New(fsys, "/dest", proligent.BuildOptions{}).Save(dw)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSaveDestinationIsFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/dest", "not a directory")
	dw := proligent.NewDataWarehouse(proligent.DataWarehouseOptions{})

	_, err := New(fsys, "/dest", proligent.BuildOptions{}).Save(dw)
	require.Error(t, err)
	assert.ErrorIs(t, err, perrors.ErrInvalidArgument)
}

func TestSaveCreatesDestination(t *testing.T) {
	fsys := afero.NewMemMapFs()
	dw := proligent.NewDataWarehouse(proligent.DataWarehouseOptions{})

	saved, err := New(fsys, "/a/b/c", proligent.BuildOptions{}).Save(dw)
	require.NoError(t, err)
	isDir, err := afero.IsDir(fsys, "/a/b/c")
	require.NoError(t, err)
	assert.True(t, isDir)

	data, err := afero.ReadFile(fsys, saved)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte(xmltree.Header)))
	assert.False(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
}

func TestSavedPayloadValidates(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/src/log.txt", "log")

	m, err := proligent.NewMeasure(12.5, proligent.MeasureOptions{Unit: "V"})
	require.NoError(t, err)
	step, err := proligent.NewStepRun(proligent.StepRunOptions{Name: "Voltage", Measures: []proligent.Measure{m}})
	require.NoError(t, err)
	step.Complete(proligent.StatusPass)
	seq, err := proligent.NewSequenceRun(proligent.SequenceRunOptions{Steps: []*proligent.StepRun{step}})
	require.NoError(t, err)
	op, err := proligent.NewOperationRun(proligent.OperationRunOptions{Station: "S1", Sequences: []*proligent.SequenceRun{seq}})
	require.NoError(t, err)
	op.AddDocument(proligent.NewDocument("/src/log.txt"))
	process := proligent.NewProcessRun(proligent.ProcessRunOptions{Operations: []*proligent.OperationRun{op}})
	unit, err := proligent.NewProductUnit(proligent.ProductUnitOptions{FullName: "Product/X"})
	require.NoError(t, err)
	dw := proligent.NewDataWarehouse(proligent.DataWarehouseOptions{ProcessRun: process, ProductUnit: unit})

	saved, err := New(fsys, "/dest", proligent.BuildOptions{Location: time.UTC}).Save(dw)
	require.NoError(t, err)

	data, err := afero.ReadFile(fsys, saved)
	require.NoError(t, err)
	v, err := validator.NewDefault()
	require.NoError(t, err)
	res := v.ValidateBytesSafe(data, saved)
	assert.True(t, res.IsValid, res.Message)
	assert.Equal(t, dw.SourceFingerprint, res.Fingerprint)
}

func TestExportReportsDocumentCopies(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/src/report.pdf", "report")

	unit, err := proligent.NewProductUnit(proligent.ProductUnitOptions{
		FullName: "P",
		Documents: []proligent.Document{
			proligent.NewDocument("/src/report.pdf"),
			proligent.NewDocument("/src/report.pdf"),
		},
	})
	require.NoError(t, err)
	dw := proligent.NewDataWarehouse(proligent.DataWarehouseOptions{ProductUnit: unit})

	p, err := New(fsys, "/dest", proligent.BuildOptions{Location: time.UTC}).Export(dw, "payload.xml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/dest", "payload.xml"), p.Path)
	require.Len(t, p.Documents, 1, "the same file is copied once")
	assert.True(t, strings.HasSuffix(p.Documents[0], "_report.pdf"))
	assert.Equal(t, append([]string{p.Path}, p.Documents...), p.Files())

	root := readPayload(t, fsys, p.Path)
	assert.Len(t, root.Descendants("Document"), 2)
}
