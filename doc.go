// Package openfdw exposes external, heterogeneous data sources as
// relational foreign tables through a single synchronous scan
// lifecycle.
//
// A wrapper turns one kind of remote source (a Logflare query
// endpoint, JSON objects in an S3 bucket) into rows of typed cells.
// The host constructs a wrapper by name, begins a scan with a declared
// projection, iterates the buffered result one row at a time, and ends
// the scan. Credentials arrive either inline or as secret-store
// references resolved once at construction; a credential that cannot
// be resolved degrades scans to empty results instead of failing.
//
// # Architecture
//
// The module is organized around a small set of concerns:
//
// 1. Value model: pkg/value defines the typed Cell union, ordered
// nullable Rows, and the advisory pushdown descriptors.
//
// 2. Coercion: pkg/coerce strictly converts untyped JSON records into
// typed rows, rejecting anything that does not fit the declared column
// exactly.
//
// 3. Transport: pkg/clients builds authenticated HTTP clients with
// exponential-backoff retry for transient failures; pkg/runtime
// bridges the synchronous lifecycle onto context-driven I/O.
//
// 4. Framework: pkg/connector holds the wrapper contracts, the shared
// BaseWrapper, the registry, and the concrete wrappers.
//
// # Quick Start
//
// Scan a foreign table from code:
//
//	import (
//	    "context"
//	    "github.com/openfdw/openfdw/pkg/config"
//	    "github.com/openfdw/openfdw/pkg/connector/registry"
//	    "github.com/openfdw/openfdw/pkg/secrets"
//	    "github.com/openfdw/openfdw/pkg/value"
//
//	    _ "github.com/openfdw/openfdw/pkg/connector/sources/logflare"
//	)
//
//	fdw, err := registry.New(ctx, "logflare",
//	    config.Options{"api_key_id": "logflare/token"},
//	    secrets.NewEnvStore())
//
//	columns := []value.Column{
//	    {Name: "id", Type: value.ColumnTypeInt8},
//	    {Name: "event_message", Type: value.ColumnTypeText},
//	}
//
//	err = fdw.BeginScan(ctx, nil, columns, nil, nil,
//	    config.Options{"endpoint": "my-endpoint"})
//	defer fdw.EndScan()
//
//	for {
//	    row, ok := fdw.IterScan()
//	    if !ok {
//	        break
//	    }
//	    // consume row
//	}
//
// Or from the CLI:
//
//	openfdw scan --profile tables.yaml --table logs
//
// # Key Packages
//
//	pkg/value      - Typed cells, rows, and pushdown descriptors
//	pkg/coerce     - Strict JSON to cell coercion
//	pkg/secrets    - Credential resolution and secret stores
//	pkg/clients    - Authenticated, retrying HTTP clients
//	pkg/runtime    - Blocking bridge for the synchronous lifecycle
//	pkg/connector  - Wrapper contracts, base, registry, and sources
//	pkg/config     - Option maps and yaml table profiles
//	pkg/logger     - Structured logging
//	pkg/metrics    - Prometheus scan metrics
package openfdw
