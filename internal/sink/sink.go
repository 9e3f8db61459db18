// Package sink defines where generated payloads and their documents are
// published after they are written locally.
package sink

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete sink implementation.
type Driver string

const (
	// DriverFilesystem copies payloads into a directory, typically a share
	// polled by the Integration Service.
	DriverFilesystem Driver = "fs"
	// DriverS3 uploads payloads to an S3 compatible bucket.
	DriverS3 Driver = "s3"
	// DriverMemory keeps payloads in process memory (tests).
	DriverMemory Driver = "memory"
)

// ContentTypeXML is the content type of payloads.
const ContentTypeXML = "application/xml"

// ErrExists is returned by Put when the key is already taken.
var ErrExists = errors.New("sink: object already exists")

// ErrNotFound is returned by Get for an unknown key.
var ErrNotFound = errors.New("sink: object not found")

// Info describes a published object.
type Info struct {
	Key          string    `json:"key"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
	Size         int64     `json:"size_bytes"`
}

// Sink publishes objects under flat keys. Put is create-only.
type Sink interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}
