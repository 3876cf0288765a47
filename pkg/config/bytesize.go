package config

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// ByteSize is a size in bytes written in configuration files either as a
// plain number or as a human-readable string like "16KiB" or "1MB".
type ByteSize uint64

// ParseByteSize parses a human-readable size.
func ParseByteSize(s string) (ByteSize, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	return ByteSize(n), nil
}

// String formats the size with binary units.
func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

// MarshalYAML writes the human-readable form when it parses back to the
// same value, the plain number otherwise.
func (b ByteSize) MarshalYAML() (interface{}, error) {
	s := b.String()
	if back, err := humanize.ParseBytes(s); err == nil && back == uint64(b) {
		return s, nil
	}
	return uint64(b), nil
}

// UnmarshalYAML accepts both forms written by MarshalYAML.
func (b *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseByteSize(node.Value)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// JSONSchema describes ByteSize as a string or a non-negative integer.
func (ByteSize) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "integer", Minimum: "0"},
			{Type: "string", Pattern: `^\s*[0-9.]+\s*[a-zA-Z]*\s*$`},
		},
		Description: "Size in bytes, e.g. 16384 or \"16KiB\"",
	}
}
