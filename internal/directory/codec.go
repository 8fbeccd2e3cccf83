package directory

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// requiredKeys are the top-level keys every registry document must carry.
var requiredKeys = []string{"repo", "created_at", "updated_at", "modules"}

// ErrAlreadyInitialized is returned by Init when a registry file exists.
var ErrAlreadyInitialized = errors.New("registry file already exists")

// ConfigError reports a malformed registry document. It is fatal to the
// operation: nothing is partially loaded.
type ConfigError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Load reads and parses the registry document at path.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: "cannot read registry file", Err: err}
	}

	// Surface missing required keys before the typed decode, which would
	// silently zero them.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Path: path, Reason: "invalid YAML", Err: err}
	}
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			return nil, &ConfigError{Path: path, Reason: fmt.Sprintf("missing required key %q", key)}
		}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var d Directory
	if err := dec.Decode(&d); err != nil {
		return nil, &ConfigError{Path: path, Reason: "invalid registry document", Err: err}
	}
	return &d, nil
}

// Marshal renders the directory in its canonical YAML form: two-space
// indentation, field order fixed by the struct definitions. Clean's
// idempotence guarantee is stated in terms of this output.
func Marshal(d *Directory) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the directory to path, stamping updated_at and refreshing the
// config hash.
func Save(path string, d *Directory) error {
	d.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	hash, err := ConfigHash(d)
	if err != nil {
		return fmt.Errorf("hashing registry: %w", err)
	}
	if d.Hashes == nil {
		d.Hashes = &Hashes{}
	}
	d.Hashes.Config = hash

	data, err := Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Init creates a registry skeleton at path. The repo name defaults to the
// name of the directory holding the file.
func Init(path string) (*Directory, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, ErrAlreadyInitialized
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving registry path: %w", err)
	}

	d := &Directory{
		Repo:      filepath.Base(filepath.Dir(abs)),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		People:    []Person{},
		Modules:   []*Module{},
	}
	if err := Save(path, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ConfigHash computes the sha1 of the canonical document with the volatile
// fields (hashes, updated_at) stripped.
func ConfigHash(d *Directory) (string, error) {
	stripped := d.Clone()
	stripped.Hashes = nil
	stripped.UpdatedAt = ""

	data, err := Marshal(stripped)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

// ExportHash computes the sha1 of rendered export content.
func ExportHash(content []byte) string {
	sum := sha1.Sum(content)
	return hex.EncodeToString(sum[:])
}

// CheckHashes compares the stored hashes against freshly computed ones and
// returns a human-readable mismatch list. exportContent may be nil when the
// registry configures no export.
func CheckHashes(d *Directory, exportContent []byte) ([]string, error) {
	current, err := ConfigHash(d)
	if err != nil {
		return nil, err
	}

	var stored Hashes
	if d.Hashes != nil {
		stored = *d.Hashes
	}

	var mismatches []string
	if stored.Config != current {
		mismatches = append(mismatches, fmt.Sprintf(
			"config hash out of date: stored %s, computed %s", stored.Config, current))
	}
	if exportContent != nil {
		if got := ExportHash(exportContent); stored.Export != got {
			mismatches = append(mismatches, fmt.Sprintf(
				"export hash out of date: stored %s, computed %s", stored.Export, got))
		}
	}
	return mismatches, nil
}
