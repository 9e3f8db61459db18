package proligent

import (
	"github.com/jacoelho/proligent/pkg/xmltree"
)

// Document references a file attached to an entity.
type Document struct {
	Identifier  string
	FileName    string
	Name        string
	Description string
}

// NewDocument returns a document with a generated identifier.
func NewDocument(fileName string) Document {
	return Document{Identifier: newID(), FileName: fileName}
}

// Build returns the Document element.
func (d Document) Build(BuildOptions) (*xmltree.Element, error) {
	if err := requireNonBlank(d.Identifier, "document identifier"); err != nil {
		return nil, err
	}
	if err := requireNonBlank(d.FileName, "document file name"); err != nil {
		return nil, err
	}
	el := newElement("Document").
		SetAttr("Identifier", d.Identifier).
		SetAttr("FileName", d.FileName)
	el.SetAttrIf("Name", d.Name)
	el.SetAttrIf("Description", d.Description)
	return el, nil
}

type documents struct {
	list []Document
}

// AddDocument attaches d, generating its identifier when blank.
func (ds *documents) AddDocument(d Document) {
	d.Identifier = orNewID(d.Identifier)
	ds.list = append(ds.list, d)
}

// Documents returns a copy of the attached documents.
func (ds *documents) Documents() []Document {
	return append([]Document(nil), ds.list...)
}

func (ds *documents) build(parent *xmltree.Element, opts BuildOptions) error {
	for _, d := range ds.list {
		el, err := d.Build(opts)
		if err != nil {
			return err
		}
		parent.Append(el)
	}
	return nil
}
