package logflare

import (
	"bytes"
	"context"
	"io"
	"net/http"

	gojson "github.com/goccy/go-json"

	"github.com/openfdw/openfdw/pkg/connector/core"
	"github.com/openfdw/openfdw/pkg/errors"
	"github.com/openfdw/openfdw/pkg/runtime"
	"github.com/openfdw/openfdw/pkg/value"
)

// Single-row write-back hooks. These are advisory, not transactional:
// each call maps to one HTTP request against the endpoint named by the
// row's options, and a failure is reported to the caller with no
// rollback of anything previously written.

var _ core.RowWriter = (*Wrapper)(nil)

// Insert posts one row to the endpoint.
func (w *Wrapper) Insert(ctx context.Context, row *value.Row) error {
	body, err := gojson.Marshal(row.Interface())
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to encode row")
	}
	return w.modify(ctx, http.MethodPost, "", body)
}

// Update patches the row identified by rowID.
func (w *Wrapper) Update(ctx context.Context, rowID value.Cell, row *value.Row) error {
	body, err := gojson.Marshal(row.Interface())
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to encode row")
	}
	return w.modify(ctx, http.MethodPatch, rowID.String(), body)
}

// Delete removes the row identified by rowID.
func (w *Wrapper) Delete(ctx context.Context, rowID value.Cell) error {
	return w.modify(ctx, http.MethodDelete, rowID.String(), nil)
}

func (w *Wrapper) modify(ctx context.Context, method, rowID string, body []byte) error {
	if w.client == nil {
		return errors.New(errors.ErrorTypeConfig, "no authenticated client available")
	}

	target := *w.baseURL
	if rowID != "" {
		joined, err := w.baseURL.Parse(rowID)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "invalid row identifier")
		}
		target = *joined
	}

	status, err := runtime.BlockOn(w.Runtime(), ctx, func(ctx context.Context) (int, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
		if err != nil {
			return 0, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := w.client.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "request failed")
	}
	if status < 200 || status >= 300 {
		return errors.Newf(errors.ErrorTypeRequest, "write failed with status %d", status)
	}
	return nil
}
