// Package mapping defines the rules that bind archive members to schema
// entities, and the YAML mapping table they are read from.
//
// A rule names a source file inside the archive, the entity its rows land in,
// the header renames to apply, and the transforms to run on renamed fields.
// Rules are plain data until Validate normalizes them for the loader.
package mapping

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/leapstack-labs/roastery/internal/transform"
	"github.com/leapstack-labs/roastery/pkg/core"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTable []byte

// ErrInvalidRule is wrapped by every normalization failure.
var ErrInvalidRule = errors.New("invalid mapping rule")

// Rule maps one archive member to one entity.
type Rule struct {
	SourceFile string      `yaml:"source_file" json:"source_file"`
	Entity     core.Entity `yaml:"entity" json:"entity"`
	// Rename holds [source header, target field] pairs.
	Rename [][]string `yaml:"rename,omitempty" json:"rename,omitempty"`
	// Transform holds [target field, transform name] pairs, keyed by the renamed field.
	Transform [][]string `yaml:"transform,omitempty" json:"transform,omitempty"`

	// Populated by Normalize.
	Renames        map[string]string         `yaml:"-" json:"-"`
	TransformNames map[string]string         `yaml:"-" json:"-"`
	Transforms     map[string]transform.Func `yaml:"-" json:"-"`

	// Err is the reason the last Validate rejected the rule.
	Err error `yaml:"-" json:"-"`

	decodeErr error
}

// Table is the on-disk mapping table. Rules are decoded one by one so a
// malformed rule does not hide the others.
type Table struct {
	Rules []yaml.Node `yaml:"rules"`
}

var ruleKeys = map[string]bool{
	"source_file": true,
	"entity":      true,
	"rename":      true,
	"transform":   true,
}

// Normalize checks the rule and turns its association lists into lookup maps.
// Later pairs win over earlier pairs with the same key.
func (r *Rule) Normalize(reg *transform.Registry) error {
	if r.decodeErr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRule, r.decodeErr)
	}
	if r.SourceFile == "" {
		return fmt.Errorf("%w: missing source_file", ErrInvalidRule)
	}
	if r.Entity == "" {
		return fmt.Errorf("%w: missing entity", ErrInvalidRule)
	}

	renames := make(map[string]string, len(r.Rename))
	for i, pair := range r.Rename {
		if len(pair) != 2 {
			return fmt.Errorf("%w: rename entry %d has %d elements, want 2", ErrInvalidRule, i, len(pair))
		}
		renames[pair[0]] = pair[1]
	}

	names := make(map[string]string, len(r.Transform))
	funcs := make(map[string]transform.Func, len(r.Transform))
	for i, pair := range r.Transform {
		if len(pair) != 2 {
			return fmt.Errorf("%w: transform entry %d has %d elements, want 2", ErrInvalidRule, i, len(pair))
		}
		fn, err := reg.Lookup(pair[1])
		if err != nil {
			return fmt.Errorf("%w: field %q: %w", ErrInvalidRule, pair[0], err)
		}
		names[pair[0]] = pair[1]
		funcs[pair[0]] = fn
	}

	r.Renames = renames
	r.TransformNames = names
	r.Transforms = funcs
	return nil
}

// Validate normalizes the rule in place and reports whether it is usable.
// Failures are logged, recorded in r.Err, and leave the lookup maps unset.
func Validate(r *Rule, reg *transform.Registry, logger *slog.Logger) bool {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r.Err = r.Normalize(reg)
	if r.Err != nil {
		logger.Error("skipping mapping rule",
			"file", r.SourceFile,
			"entity", string(r.Entity),
			"error", r.Err)
		return false
	}
	return true
}

// Load parses a mapping table from YAML. Only a document that is not a
// mapping table is an error; a rule that fails to decode is returned with
// the decode error, and Normalize rejects it.
func Load(rd io.Reader) ([]*Rule, error) {
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)

	var t Table
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse mapping table: %w", err)
	}

	rules := make([]*Rule, 0, len(t.Rules))
	for i := range t.Rules {
		rules = append(rules, decodeRule(&t.Rules[i]))
	}
	return rules, nil
}

func decodeRule(n *yaml.Node) *Rule {
	r := &Rule{}
	if err := n.Decode(r); err != nil {
		r.decodeErr = fmt.Errorf("line %d: %w", n.Line, err)
		return r
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if !ruleKeys[key.Value] {
			r.decodeErr = fmt.Errorf("line %d: unknown field %q", key.Line, key.Value)
			return r
		}
	}
	return r
}

// LoadFile parses the mapping table at path.
func LoadFile(path string) ([]*Rule, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from user configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping table: %w", err)
	}
	defer func() { _ = f.Close() }()

	rules, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// Default returns a fresh copy of the built-in coffee-shop mapping table.
func Default() []*Rule {
	rules, err := Load(bytes.NewReader(defaultTable))
	if err != nil {
		panic(fmt.Sprintf("embedded mapping table is invalid: %v", err))
	}
	return rules
}

// Resolve returns the table at path, or the built-in table when path is empty.
func Resolve(path string) ([]*Rule, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
