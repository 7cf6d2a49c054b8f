package policy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/airlockhq/airlock/pkg/airlockerr"
)

func checkRegex(pattern string) error {
	_, err := regexp.Compile(pattern)
	return err
}

// supportedExtensions lists the file extensions LoadFile understands.
var supportedExtensions = []string{".json", ".yaml", ".yml"}

// LoadLiteral validates a literal FilePolicy object against the strict
// schema (version pinned to 1, integer fields non-negative).
func LoadLiteral(file FilePolicy) (*FilePolicy, error) {
	if err := validateSchema(file); err != nil {
		return nil, err
	}
	return &file, nil
}

// LoadFile reads and strictly parses a policy file from disk. Supported
// media are JSON and YAML (SPEC_FULL.md §6.2); an unsupported extension
// is rejected by name, listing what is supported.
func LoadFile(path string) (*FilePolicy, error) {
	ext := strings.ToLower(filepath.Ext(path))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, airlockerr.Wrap(err, airlockerr.InvalidInput, "read policy file")
	}

	var file FilePolicy
	switch ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, airlockerr.Wrap(err, airlockerr.InvalidInput, "parse JSON policy file")
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil {
			return nil, airlockerr.Wrap(err, airlockerr.InvalidInput, "parse YAML policy file")
		}
	default:
		return nil, airlockerr.Newf(airlockerr.InvalidInput,
			"unsupported policy file extension %q (supported: %s)", ext, strings.Join(supportedExtensions, ", "))
	}

	if err := validateSchema(file); err != nil {
		return nil, err
	}
	return &file, nil
}

// validateSchema enforces the strict-schema invariants of SPEC_FULL.md §4.1:
// version literal 1, non-negative integers, a parseable mode, and
// regex-compilable redaction patterns (checked at load time, never at
// redaction time). Integer fields are only checked against zero: a value
// of 0 is accepted and no upper bound is enforced.
func validateSchema(file FilePolicy) error {
	if file.Version != 1 {
		return airlockerr.Newf(airlockerr.InvalidInput, "policy file version must be 1, got %d", file.Version)
	}
	if file.MaxSessionTTLMs < 0 {
		return airlockerr.New(airlockerr.InvalidInput, "maxSessionTtlMs must not be negative")
	}
	if file.MaxSnapshotNodes < 0 {
		return airlockerr.New(airlockerr.InvalidInput, "maxSnapshotNodes must not be negative")
	}
	if file.Mode != "" {
		if _, err := ParseMode(file.Mode); err != nil {
			return airlockerr.Wrap(err, airlockerr.InvalidInput, "invalid mode in policy file")
		}
	}
	for _, pattern := range file.RedactionPatterns {
		if err := checkRegex(pattern); err != nil {
			return airlockerr.Wrap(err, airlockerr.InvalidInput, fmt.Sprintf("invalid redactionPatterns entry %q", pattern))
		}
	}
	return nil
}
