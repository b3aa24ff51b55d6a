// Package connector provides the framework for exposing external data
// sources as foreign tables.
//
// # Architecture Overview
//
// The connector package is organized into several sub-packages:
//
//   - core: Defines the fundamental interfaces every wrapper implements.
//     ForeignDataWrapper is the scan lifecycle (begin, iterate, end);
//     RowWriter is the optional single-row write-back surface.
//
//   - base: Provides BaseWrapper, the embedded foundation carrying the
//     per-instance blocking runtime, the buffered row set, the logger
//     and the metrics collector. Concrete wrappers embed it and
//     implement BeginScan on top.
//
//   - registry: Maps wrapper names to factories, validators and
//     metadata. Wrapper packages self-register during initialization;
//     hosts instantiate by name.
//
//   - sources: Contains the concrete wrapper implementations. logflare
//     scans a Logflare query endpoint over HTTP; s3 scans JSON objects
//     under a bucket prefix.
//
// # Scan Lifecycle
//
// Every wrapper follows the same four-phase contract. Construction
// resolves the credential and builds any authenticated client exactly
// once. BeginScan performs the whole remote fetch, coerces the response
// into typed rows, and buffers the complete result. IterScan drains the
// buffer one row per call until exhausted, and stays exhausted.
// EndScan releases the buffer; the instance may then begin a new scan.
//
// A wrapper whose credential could not be resolved is still
// constructed: its scans succeed with zero rows. Likewise a missing
// remote resource (HTTP 404, absent bucket or key) is an empty result,
// not an error. Hard failures are reserved for transport errors that
// survive the retry budget, non-2xx terminal statuses, and data-shape
// mismatches between the response and the declared columns.
//
// # Example Usage
//
// Creating and driving a wrapper:
//
//	fdw, err := registry.New(ctx, "logflare", config.Options{
//		"api_key_id": "logflare/token",
//	}, secrets.NewEnvStore())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	columns := []value.Column{
//		{Name: "id", Type: value.ColumnTypeInt8},
//		{Name: "event_message", Type: value.ColumnTypeText},
//	}
//
//	err = fdw.BeginScan(ctx, nil, columns, nil, nil, config.Options{
//		"endpoint": "my-endpoint",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer fdw.EndScan()
//
//	for {
//		row, ok := fdw.IterScan()
//		if !ok {
//			break
//		}
//		// consume row
//	}
package connector
