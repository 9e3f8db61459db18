// Package manifest decodes a top-down warehouse description from YAML, TOML
// or JSON and assembles the corresponding entities.
//
// Timestamps are strings. Values with an offset are absolute; naive values
// are read in the manifest time zone, or the caller's location when the
// manifest names none.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	perrors "github.com/jacoelho/proligent/errors"
)

// Format is a manifest encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Manifest is the root of a description.
type Manifest struct {
	Process        *Process `yaml:"process" toml:"process" json:"process"`
	Product        *Product `yaml:"product" toml:"product" json:"product"`
	TimeZone       string   `yaml:"time_zone" toml:"time_zone" json:"time_zone"`
	GenerationTime string   `yaml:"generation_time" toml:"generation_time" json:"generation_time"`
	Fingerprint    string   `yaml:"fingerprint" toml:"fingerprint" json:"fingerprint"`
}

// Process describes the top process run.
type Process struct {
	ID                    string      `yaml:"id" toml:"id" json:"id"`
	Name                  string      `yaml:"name" toml:"name" json:"name"`
	Version               string      `yaml:"version" toml:"version" json:"version"`
	Mode                  string      `yaml:"mode" toml:"mode" json:"mode"`
	ProductUnitIdentifier string      `yaml:"product_unit_identifier" toml:"product_unit_identifier" json:"product_unit_identifier"`
	ProductFullName       string      `yaml:"product_full_name" toml:"product_full_name" json:"product_full_name"`
	Status                string      `yaml:"status" toml:"status" json:"status"`
	Start                 string      `yaml:"start" toml:"start" json:"start"`
	End                   string      `yaml:"end" toml:"end" json:"end"`
	Operations            []Operation `yaml:"operations" toml:"operations" json:"operations"`
}

// Operation describes an operation run.
type Operation struct {
	ID              string           `yaml:"id" toml:"id" json:"id"`
	Name            string           `yaml:"name" toml:"name" json:"name"`
	Station         string           `yaml:"station" toml:"station" json:"station"`
	User            string           `yaml:"user" toml:"user" json:"user"`
	ProcessName     string           `yaml:"process_name" toml:"process_name" json:"process_name"`
	TestPosition    string           `yaml:"test_position" toml:"test_position" json:"test_position"`
	Status          string           `yaml:"status" toml:"status" json:"status"`
	Start           string           `yaml:"start" toml:"start" json:"start"`
	End             string           `yaml:"end" toml:"end" json:"end"`
	Sequences       []Sequence       `yaml:"sequences" toml:"sequences" json:"sequences"`
	Characteristics []Characteristic `yaml:"characteristics" toml:"characteristics" json:"characteristics"`
	Documents       []Document       `yaml:"documents" toml:"documents" json:"documents"`
}

// Sequence describes a sequence run.
type Sequence struct {
	ID              string           `yaml:"id" toml:"id" json:"id"`
	Name            string           `yaml:"name" toml:"name" json:"name"`
	Version         string           `yaml:"version" toml:"version" json:"version"`
	User            string           `yaml:"user" toml:"user" json:"user"`
	Status          string           `yaml:"status" toml:"status" json:"status"`
	Start           string           `yaml:"start" toml:"start" json:"start"`
	End             string           `yaml:"end" toml:"end" json:"end"`
	Steps           []Step           `yaml:"steps" toml:"steps" json:"steps"`
	Characteristics []Characteristic `yaml:"characteristics" toml:"characteristics" json:"characteristics"`
	Documents       []Document       `yaml:"documents" toml:"documents" json:"documents"`
}

// Step describes a step run.
type Step struct {
	ID              string           `yaml:"id" toml:"id" json:"id"`
	Name            string           `yaml:"name" toml:"name" json:"name"`
	Status          string           `yaml:"status" toml:"status" json:"status"`
	Start           string           `yaml:"start" toml:"start" json:"start"`
	End             string           `yaml:"end" toml:"end" json:"end"`
	Measures        []Measure        `yaml:"measures" toml:"measures" json:"measures"`
	Characteristics []Characteristic `yaml:"characteristics" toml:"characteristics" json:"characteristics"`
	Documents       []Document       `yaml:"documents" toml:"documents" json:"documents"`
}

// Measure describes a measure. Value keeps the decoded scalar; Type, when
// set, forces the measure kind (STRING, BOOL, INTEGER, REAL, DATETIME).
type Measure struct {
	Value    any    `yaml:"value" toml:"value" json:"value"`
	Limit    *Limit `yaml:"limit" toml:"limit" json:"limit"`
	ID       string `yaml:"id" toml:"id" json:"id"`
	Type     string `yaml:"type" toml:"type" json:"type"`
	Status   string `yaml:"status" toml:"status" json:"status"`
	Time     string `yaml:"time" toml:"time" json:"time"`
	Comments string `yaml:"comments" toml:"comments" json:"comments"`
	Unit     string `yaml:"unit" toml:"unit" json:"unit"`
	Symbol   string `yaml:"symbol" toml:"symbol" json:"symbol"`
}

// Limit describes a limit by expression name, e.g.
// LOWERBOUND_LEQ_X_LE_HIGHERBOUND.
type Limit struct {
	Lower      any    `yaml:"lower" toml:"lower" json:"lower"`
	Higher     any    `yaml:"higher" toml:"higher" json:"higher"`
	Expression string `yaml:"expression" toml:"expression" json:"expression"`
}

// Characteristic is a name/value pair.
type Characteristic struct {
	Name  string `yaml:"name" toml:"name" json:"name"`
	Value string `yaml:"value" toml:"value" json:"value"`
}

// Document references an attached file.
type Document struct {
	ID          string `yaml:"id" toml:"id" json:"id"`
	File        string `yaml:"file" toml:"file" json:"file"`
	Name        string `yaml:"name" toml:"name" json:"name"`
	Description string `yaml:"description" toml:"description" json:"description"`
}

// Product describes the product unit.
type Product struct {
	Scrapped          *bool            `yaml:"scrapped" toml:"scrapped" json:"scrapped"`
	Identifier        string           `yaml:"identifier" toml:"identifier" json:"identifier"`
	FullName          string           `yaml:"full_name" toml:"full_name" json:"full_name"`
	Manufacturer      string           `yaml:"manufacturer" toml:"manufacturer" json:"manufacturer"`
	CreationTime      string           `yaml:"creation_time" toml:"creation_time" json:"creation_time"`
	ManufacturingTime string           `yaml:"manufacturing_time" toml:"manufacturing_time" json:"manufacturing_time"`
	ScrapTime         string           `yaml:"scrap_time" toml:"scrap_time" json:"scrap_time"`
	Characteristics   []Characteristic `yaml:"characteristics" toml:"characteristics" json:"characteristics"`
	Documents         []Document       `yaml:"documents" toml:"documents" json:"documents"`
}

// FormatOf maps a file extension to a format.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", perrors.Newf(perrors.ErrInvalidArgument, "unknown manifest format for %s", path)
	}
}

// Decode reads a manifest in format f.
func Decode(r io.Reader, f Format) (*Manifest, error) {
	var m Manifest
	switch f {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode yaml manifest: %w", err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode toml manifest: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode json manifest: %w", err)
		}
	default:
		return nil, perrors.Newf(perrors.ErrInvalidArgument, "unknown manifest format %q", f)
	}
	return &m, nil
}

// Load reads and decodes the manifest at path on fsys. The format follows
// the file extension. A nil fsys means the OS file system.
func Load(fsys afero.Fs, path string) (*Manifest, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return Decode(bytes.NewReader(data), f)
}
