// Package logflare implements the Logflare endpoint-query wrapper: a
// foreign table backed by a Logflare query endpoint returning a JSON
// {"result": [...]} envelope.
//
// It is also the reference implementation of the generic REST scan
// lifecycle: construct resolves the credential and builds the retrying
// client, begin-scan issues one bridged request and coerces the
// response into the buffered row set, iterate drains it, end releases
// it.
package logflare

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/openfdw/openfdw/pkg/clients"
	"github.com/openfdw/openfdw/pkg/coerce"
	"github.com/openfdw/openfdw/pkg/config"
	"github.com/openfdw/openfdw/pkg/connector/base"
	"github.com/openfdw/openfdw/pkg/connector/core"
	"github.com/openfdw/openfdw/pkg/errors"
	"github.com/openfdw/openfdw/pkg/observability"
	"github.com/openfdw/openfdw/pkg/runtime"
	"github.com/openfdw/openfdw/pkg/secrets"
	"github.com/openfdw/openfdw/pkg/value"
)

const (
	// WrapperName identifies this wrapper in the registry.
	WrapperName = "logflare"

	// DefaultBaseURL is used when the api_url option is absent.
	DefaultBaseURL = "https://api.logflare.app/api/endpoints/query/"

	// OptionAPIURL overrides the base endpoint URL.
	OptionAPIURL = "api_url"
	// OptionEndpoint selects which remote resource to query. Required
	// for table objects; enforced by Validator.
	OptionEndpoint = "endpoint"
	// OptionAuthType selects credential attachment: "header" (default,
	// x-api-key) or "oauth2" (bearer token).
	OptionAuthType = "auth_type"
)

// Wrapper is a Logflare foreign table wrapper instance. It owns its
// runtime bridge, its optional authenticated client, and the current
// scan's buffered row set; nothing is shared across instances.
type Wrapper struct {
	*base.BaseWrapper

	baseURL *url.URL
	client  *http.Client
}

// envelope is the response body shape of a Logflare query endpoint.
type envelope struct {
	Result []coerce.Record `json:"result"`
}

// fetched carries one bridged request's outcome back to the
// synchronous call site.
type fetched struct {
	status int
	body   []byte
}

// New constructs a wrapper instance from its options.
//
// The base URL gets a default when absent and is always normalized to
// end with a path separator so endpoint joining is unambiguous. A
// credential that cannot be resolved is not a construction failure:
// the wrapper is built without a client and every scan degrades to an
// empty result.
func New(ctx context.Context, options config.Options, store secrets.Store) (core.ForeignDataWrapper, error) {
	raw := options.GetDefault(OptionAPIURL, DefaultBaseURL)
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	baseURL, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid api_url option")
	}

	w := &Wrapper{
		BaseWrapper: base.NewBaseWrapper(WrapperName),
		baseURL:     baseURL,
	}

	if cred, ok := secrets.ResolveCredential(ctx, options, store); ok {
		style := clients.AuthStyleHeader
		if options.GetDefault(OptionAuthType, "header") == "oauth2" {
			style = clients.AuthStyleBearer
		}
		w.client = clients.New(clients.Config{
			Credential: cred,
			AuthStyle:  style,
			Retry:      clients.DefaultRetryConfig(),
		})
	} else {
		w.Logger().Warn("no credential resolved, scans will return empty results")
	}

	return w, nil
}

// BeginScan issues the endpoint request and buffers the coerced rows.
//
// Quals, sorts and limit are advisory pushdown hints; this wrapper
// ignores them and relies on post-filtering by the caller. A 404
// response means the resource is legitimately empty, not an error.
func (w *Wrapper) BeginScan(ctx context.Context, quals []value.Qual, columns []value.Column, sorts []value.Sort, limit *value.Limit, options config.Options) error {
	ctx, span := observability.StartScanSpan(ctx, WrapperName, "begin_scan")
	defer span.End()

	endpoint, ok := options.Get(OptionEndpoint)
	if !ok {
		// the validator catches this at definition time; a caller that
		// bypassed validation gets an empty scan, loudly
		w.Logger().Warn("required option 'endpoint' not specified, returning empty scan")
		w.SetRows(nil)
		return nil
	}

	if w.client == nil {
		w.SetRows(nil)
		return nil
	}

	target, err := w.baseURL.Parse(endpoint)
	if err != nil {
		w.ScanFailed()
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid endpoint option")
	}

	if len(quals) > 0 || len(sorts) > 0 || limit != nil {
		w.Logger().Debug("ignoring pushdown hints",
			zap.Int("quals", len(quals)),
			zap.Int("sorts", len(sorts)),
			zap.Bool("limit", limit != nil))
	}

	start := time.Now()
	res, err := runtime.BlockOn(w.Runtime(), ctx, func(ctx context.Context) (fetched, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
		if err != nil {
			return fetched{}, err
		}
		resp, err := w.client.Do(req)
		if err != nil {
			return fetched{}, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fetched{}, err
		}
		return fetched{status: resp.StatusCode, body: body}, nil
	})
	w.Collector().ObserveRequest(time.Since(start))
	if err != nil {
		w.ScanFailed()
		return errors.Wrap(err, errors.ErrorTypeConnection, "request failed")
	}

	if res.status == http.StatusNotFound {
		// a 404 is an empty resource, not a request error
		w.SetRows(nil)
		return nil
	}
	if res.status < 200 || res.status >= 300 {
		w.ScanFailed()
		return errors.Newf(errors.ErrorTypeRequest, "request failed: endpoint '%s' returned status %d", endpoint, res.status)
	}

	var env envelope
	dec := gojson.NewDecoder(bytes.NewReader(res.body))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		w.ScanFailed()
		return errors.Wrap(err, errors.ErrorTypeRequest, "failed to decode response body")
	}

	rows, err := coerce.RecordsToRows(env.Result, columns)
	if err != nil {
		w.ScanFailed()
		return err
	}

	w.SetRows(rows)
	w.Logger().Debug("scan buffered",
		zap.String("endpoint", endpoint),
		zap.Int("rows", len(rows)))
	return nil
}

// Validator enforces the wrapper's required options at definition
// time, before any scan ever occurs.
func Validator(options config.Options, kind core.ObjectKind) error {
	if kind != core.ObjectKindTable {
		return nil
	}
	_, err := options.Require(OptionEndpoint)
	return err
}

// Metadata returns the wrapper's static identification.
func Metadata() core.Metadata {
	return core.Metadata{
		Name:    WrapperName,
		Version: "0.1.0",
		Author:  "openfdw",
		Website: "https://github.com/openfdw/openfdw/tree/main/pkg/connector/sources/logflare",
	}
}
