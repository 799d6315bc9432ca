package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Common errors for fixture loading.
var (
	ErrFileNotFound     = errors.New("fixture file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrEmptyFile        = errors.New("fixture file is empty")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrNoMatches        = errors.New("no fixture files match pattern")
)

// Format is the encoding of a fixture document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath detects the format from the file extension. Anything other
// than .json is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads, expands, and validates a fixture file.
// Relative bodyFile references are resolved against the file's directory.
func Load(path string) (*Fixture, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	fx, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	fx.resolveBodyFiles(filepath.Dir(path))
	return fx, nil
}

// LoadGlob loads every file matching a doublestar pattern, in lexical order,
// and merges them into one fixture.
func LoadGlob(pattern string) (*Fixture, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatches, pattern)
	}
	sort.Strings(matches)

	merged := &Fixture{}
	for _, match := range matches {
		fx, err := Load(match)
		if err != nil {
			return nil, err
		}
		merged.Merge(fx)
	}
	return merged, nil
}

// Parse decodes a fixture document after environment expansion and
// validates it against the fixture schema.
func Parse(data []byte, format Format) (*Fixture, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}
	expanded := []byte(ExpandEnvVars(string(data)))

	var raw any
	if err := decode(expanded, format, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrEmptyFile
	}
	if err := validateDocument(raw); err != nil {
		return nil, err
	}

	var fx Fixture
	if err := decode(expanded, format, &fx); err != nil {
		return nil, err
	}
	if err := fx.check(); err != nil {
		return nil, err
	}
	return &fx, nil
}

func decode(data []byte, format Format, v any) error {
	if format == FormatJSON {
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvVars expands environment variables in the input string.
// Supports ${VAR_NAME} and ${VAR_NAME:-default} syntax.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}

		if val := os.Getenv(submatch[1]); val != "" {
			return val
		}
		if len(submatch) >= 3 {
			return submatch[2]
		}
		return ""
	})
}
