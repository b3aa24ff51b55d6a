// Package config provides the string-valued option maps that
// configure wrapper instances, plus the yaml table profiles consumed
// by the CLI.
//
// Options are deliberately untyped strings: they arrive from DDL
// statements and environment files, and each wrapper interprets its
// own keys. Definition-time validation of required keys lives with the
// wrapper's validator, not here.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openfdw/openfdw/pkg/errors"
)

// Options is the per-instance configuration surface. All values are
// strings.
type Options map[string]string

// Get returns the value for key and whether it was present. Empty
// values count as absent.
func (o Options) Get(key string) (string, bool) {
	v, ok := o[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// GetDefault returns the value for key, or def when absent.
func (o Options) GetDefault(key, def string) string {
	if v, ok := o.Get(key); ok {
		return v
	}
	return def
}

// Require returns the value for key or a validation error naming the
// missing key.
func (o Options) Require(key string) (string, error) {
	v, ok := o.Get(key)
	if !ok {
		return "", errors.Newf(errors.ErrorTypeValidation, "required option '%s' is not specified", key)
	}
	return v, nil
}

// Clone returns a shallow copy of the options.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// ColumnSpec describes one projected column in a table profile.
type ColumnSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// TableProfile is a yaml description of one foreign table: which
// wrapper serves it, the wrapper options, and the projection.
type TableProfile struct {
	Wrapper string       `yaml:"wrapper"`
	Options Options      `yaml:"options"`
	Columns []ColumnSpec `yaml:"columns"`
}

// Profiles is a named collection of table profiles loaded from one
// yaml file.
type Profiles struct {
	Tables map[string]TableProfile `yaml:"tables"`
}

// LoadProfiles reads table profiles from a yaml file.
func LoadProfiles(path string) (*Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("failed to read profile file %s", path))
	}

	var p Profiles
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("failed to parse profile file %s", path))
	}
	if len(p.Tables) == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "profile file defines no tables")
	}
	return &p, nil
}

// Table returns the named table profile.
func (p *Profiles) Table(name string) (TableProfile, error) {
	t, ok := p.Tables[name]
	if !ok {
		return TableProfile{}, errors.Newf(errors.ErrorTypeConfig, "table '%s' not found in profile", name)
	}
	return t, nil
}
