package project

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

// CurrentVersion is the only snapshot version this package understands.
const CurrentVersion = 1

// ErrUnsupportedVersion is returned for snapshots written by a newer or older
// editor.
var ErrUnsupportedVersion = errors.New("unsupported project version")

// Format identifies the encoding of a snapshot.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks a format from a file extension, defaulting to JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads a project snapshot from path.
func Load(path string) (*Project, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(b, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Decode reads a snapshot from r.
func Decode(r io.Reader, format Format) (*Project, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(b, format)
}

// Parse decodes a snapshot and checks that it is structurally usable. A
// snapshot without a version is treated as version 1.
func Parse(b []byte, format Format) (*Project, error) {
	if format == FormatYAML {
		var raw any
		if err := yaml.Unmarshal(b, &raw); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		converted, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("convert yaml: %w", err)
		}
		b = converted
	}

	var p Project
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	if p.Version == 0 {
		p.Version = CurrentVersion
	}
	if p.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, p.Version)
	}
	if err := p.checkStructure(); err != nil {
		return nil, err
	}
	return &p, nil
}

// checkStructure rejects snapshots that cannot be laid out at all.
func (p *Project) checkStructure() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("canvas size must be positive, got %gx%g", p.Width, p.Height)
	}
	seen := make(map[string]bool, len(p.Elements))
	for i, e := range p.Elements {
		if e.ID == "" {
			return fmt.Errorf("element %d has no id", i)
		}
		if seen[e.ID] {
			return fmt.Errorf("duplicate element id %q", e.ID)
		}
		seen[e.ID] = true
	}
	return nil
}

// Marshal encodes p in the given format.
func Marshal(p *Project, format Format) ([]byte, error) {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil || format != FormatYAML {
		return b, err
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	return yaml.Marshal(raw)
}
