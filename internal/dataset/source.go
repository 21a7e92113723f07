package dataset

import (
	"context"
	"fmt"
	"os"
)

// Source yields the dataset for one load cycle
type Source interface {
	// Name identifies the source in logs and summaries
	Name() string
	// Kind is a short, low-cardinality label such as "file" or "upload"
	Kind() string
	Load(ctx context.Context) (*Dataset, error)
}

// FileSource reads a CSV file from disk
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }
func (s FileSource) Kind() string { return "file" }

// Load reads and parses the file
func (s FileSource) Load(ctx context.Context) (*Dataset, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	return Parse(raw)
}

// BytesSource parses an already received upload
type BytesSource struct {
	Filename string
	Data     []byte
}

func (s BytesSource) Name() string { return s.Filename }
func (s BytesSource) Kind() string { return "upload" }

// Load parses the uploaded bytes
func (s BytesSource) Load(ctx context.Context) (*Dataset, error) {
	return Parse(s.Data)
}

// DataURISource parses an upload that arrived as a base64 data URI
type DataURISource struct {
	Filename string
	URI      string
}

func (s DataURISource) Name() string { return s.Filename }
func (s DataURISource) Kind() string { return "upload" }

// Load decodes the URI and parses its payload
func (s DataURISource) Load(ctx context.Context) (*Dataset, error) {
	raw, err := DecodeDataURI(s.URI)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}
