package basket

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodeJSON reads one document, rejecting unknown fields.
func DecodeJSON(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode json: %w", ErrInvalidDocument, err)
	}
	return &doc, nil
}

// DecodeYAML reads one document, rejecting unknown fields.
func DecodeYAML(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty yaml document", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("%w: decode yaml: %w", ErrInvalidDocument, err)
	}
	return &doc, nil
}

// Load reads a .json, .yaml or .yml file and validates it.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read basket file: %w", err)
	}

	var doc *Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		doc, err = DecodeJSON(bytes.NewReader(raw))
	case ".yaml", ".yml":
		doc, err = DecodeYAML(bytes.NewReader(raw))
	default:
		return nil, fmt.Errorf("%w: unsupported file extension %q", ErrInvalidDocument, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}
