// Package config loads the optional per-project configuration file.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// FileNames are looked up, in order, in the target directory.
var FileNames = []string{".filedress.yaml", ".filedress.yml", ".filedress.json"}

// File is the content of a configuration file. Zero values mean unset.
type File struct {
	Exts    []string `json:"exts" yaml:"exts"`
	Exclude []string `json:"exclude" yaml:"exclude"`
	Depth   int      `json:"depth" yaml:"depth"`
	Up      int      `json:"up" yaml:"up"`
	Workers int      `json:"workers" yaml:"workers"`
	Indent  int      `json:"indent" yaml:"indent"`
}

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "exts":    {"type": "array", "items": {"type": "string", "minLength": 1}},
    "exclude": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "depth":   {"type": "integer", "minimum": 0},
    "up":      {"type": "integer", "minimum": 0},
    "workers": {"type": "integer", "minimum": 0},
    "indent":  {"type": "integer", "minimum": 1}
  }
}`

func compileSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource("config.json", strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile("config.json")
}

// Find returns the first configuration file present in dir, or "".
func Find(dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Load reads, validates and decodes a configuration file. JSON is chosen by
// extension; everything else is read as YAML.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	isJSON := strings.ToLower(filepath.Ext(path)) == ".json"
	if err := validate(b, isJSON); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var cfg File
	if isJSON {
		err = json.Unmarshal(b, &cfg)
	} else {
		err = yaml.Unmarshal(b, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func validate(b []byte, isJSON bool) error {
	var doc any
	if isJSON {
		if err := json.Unmarshal(b, &doc); err != nil {
			return err
		}
	} else if err := yaml.Unmarshal(b, &doc); err != nil {
		return err
	}
	if doc == nil {
		return nil
	}

	// Round trip through JSON so the validator sees JSON types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("configuration is not a plain mapping: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	schema, err := compileSchema()
	if err != nil {
		return err
	}
	return schema.Validate(v)
}
