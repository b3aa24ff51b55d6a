// Package core defines the contracts every wrapper implements: the
// four-phase scan lifecycle, the definition-time validator, and the
// static metadata surface.
//
// A wrapper instance is created once per query reference and its scan
// phases are driven serially from a single calling goroutine; begin,
// iterate and end may repeat if the caller reuses the instance for a
// nested-loop access pattern. Distinct instances share no mutable
// state and may be driven concurrently by distinct goroutines.
package core

import (
	"context"

	"github.com/openfdw/openfdw/pkg/config"
	"github.com/openfdw/openfdw/pkg/secrets"
	"github.com/openfdw/openfdw/pkg/value"
)

// ObjectKind identifies the kind of foreign object a validator is
// checking options for.
type ObjectKind string

const (
	// ObjectKindServer is a foreign server definition.
	ObjectKindServer ObjectKind = "server"
	// ObjectKindTable is a row-producing foreign table definition.
	ObjectKindTable ObjectKind = "table"
)

// Metadata is the static identification of a wrapper, supplied at
// registration. Accessing it has no side effects.
type Metadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Author  string `json:"author"`
	Website string `json:"website"`
}

// ForeignDataWrapper is the scan lifecycle every wrapper implements.
//
// BeginScan issues the source request and buffers the materialized
// result set. Two conditions are explicitly empty-and-not-error: a
// missing wrapper-specific required option (the validator's job to
// catch earlier) and an HTTP 404 from the source. Everything else that
// fails is terminal for that scan call and returned, never silently
// swallowed.
//
// IterScan pops exactly one row from the front of the buffer per call
// and reports ok=false once exhausted or if scanning never produced a
// buffer; calling it past exhaustion is an idempotent no-op.
//
// EndScan releases the buffer unconditionally and is safe to call even
// if scanning never began.
type ForeignDataWrapper interface {
	BeginScan(ctx context.Context, quals []value.Qual, columns []value.Column, sorts []value.Sort, limit *value.Limit, options config.Options) error
	IterScan() (*value.Row, bool)
	EndScan()
}

// RowWriter is the optional single-row write-back surface. Writes are
// advisory hooks, not transactions; a wrapper that cannot write simply
// does not implement this interface.
type RowWriter interface {
	Insert(ctx context.Context, row *value.Row) error
	Update(ctx context.Context, rowID value.Cell, row *value.Row) error
	Delete(ctx context.Context, rowID value.Cell) error
}

// Factory constructs a wrapper instance from its options. Credential
// resolution happens here, once; a missing credential must not fail
// construction but instead produce a wrapper that degrades to empty
// scans.
type Factory func(ctx context.Context, options config.Options, store secrets.Store) (ForeignDataWrapper, error)

// Validator checks options at definition time, before any scan ever
// occurs. For ObjectKindTable it must verify all wrapper-specific
// required options are present so an erroneous object is never usable.
type Validator func(options config.Options, kind ObjectKind) error
