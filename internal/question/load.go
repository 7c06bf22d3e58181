package question

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadBatch reads, parses, and validates a question batch file.
func LoadBatch(path string) (Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Batch{}, fmt.Errorf("read question batch: %w", err)
	}
	batch, err := parseBatch(data, path)
	if err != nil {
		return Batch{}, err
	}
	normalized, err := NormalizeBatch(batch)
	if err != nil {
		return Batch{}, err
	}
	return normalized, nil
}

func parseBatch(data []byte, path string) (Batch, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		return parseJSONBatch(data)
	}
	return parseYAMLBatch(data)
}

func parseJSONBatch(data []byte) (Batch, error) {
	var batch Batch
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&batch); err != nil {
		return Batch{}, fmt.Errorf("parse json: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Batch{}, fmt.Errorf("parse json: multiple documents are not supported")
		}
		return Batch{}, fmt.Errorf("parse json: %w", err)
	}
	return batch, nil
}

func parseYAMLBatch(data []byte) (Batch, error) {
	var batch Batch
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&batch); err != nil {
		return Batch{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Batch{}, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return Batch{}, fmt.Errorf("parse yaml: %w", err)
	}
	return batch, nil
}
