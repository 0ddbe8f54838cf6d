// Package export writes the one durable artifact the pipeline produces:
// a JSON array of per-chunk script records that round-trips losslessly
// through the script data model.
package export

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/paper2gal/paper2gal/internal/script"
)

//go:embed schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Record pairs one chunk with its generated script.
type Record struct {
	ChunkIndex int           `json:"chunk_index"`
	SourceID   string        `json:"source_id"`
	Script     script.Script `json:"script"`
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("export.json", strings.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to load export schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("export.json")
	})
	return schema, schemaErr
}

// Validate checks records against the export schema. A failure here means
// an upstream bug: normalized scripts always satisfy the schema.
func Validate(records []Record) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to serialize export: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode export for validation: %w", err)
	}

	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("export does not match schema: %w", err)
	}
	return nil
}

// Write validates and writes records as indented JSON.
func Write(w io.Writer, records []Record) error {
	if err := Validate(records); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// WriteFile writes records to path, creating or truncating it.
func WriteFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()
	return Write(f, records)
}

// Read decodes an export previously produced by Write.
func Read(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	return records, nil
}
