package logflare

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfdw/openfdw/pkg/config"
	"github.com/openfdw/openfdw/pkg/connector/core"
	"github.com/openfdw/openfdw/pkg/errors"
	"github.com/openfdw/openfdw/pkg/value"
)

type capturedRequest struct {
	method string
	path   string
	body   string
}

func captureServer(t *testing.T) (*httptest.Server, func() capturedRequest) {
	t.Helper()
	var mu sync.Mutex
	var last capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		last = capturedRequest{method: r.Method, path: r.URL.Path, body: string(body)}
		mu.Unlock()
	}))
	t.Cleanup(srv.Close)
	return srv, func() capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return last
	}
}

func TestInsert(t *testing.T) {
	srv, last := captureServer(t)

	fdw := newTestWrapper(t, srv.URL)
	writer, ok := fdw.(core.RowWriter)
	require.True(t, ok)

	row := value.NewRow()
	id := value.NewInt32(7)
	row.Push("id", &id)

	require.NoError(t, writer.Insert(context.Background(), row))

	got := last()
	assert.Equal(t, http.MethodPost, got.method)
	assert.Contains(t, got.body, `"id":7`)
}

func TestUpdateTargetsRowID(t *testing.T) {
	srv, last := captureServer(t)

	fdw := newTestWrapper(t, srv.URL)
	writer := fdw.(core.RowWriter)

	row := value.NewRow()
	name := value.NewString("renamed")
	row.Push("name", &name)

	require.NoError(t, writer.Update(context.Background(), value.NewInt64(42), row))

	got := last()
	assert.Equal(t, http.MethodPatch, got.method)
	assert.Equal(t, "/42", got.path)
}

func TestDeleteTargetsRowID(t *testing.T) {
	srv, last := captureServer(t)

	fdw := newTestWrapper(t, srv.URL)
	writer := fdw.(core.RowWriter)

	require.NoError(t, writer.Delete(context.Background(), value.NewInt64(9)))

	got := last()
	assert.Equal(t, http.MethodDelete, got.method)
	assert.Equal(t, "/9", got.path)
	assert.Empty(t, got.body)
}

func TestModifyWithoutClient(t *testing.T) {
	fdw, err := New(context.Background(), config.Options{}, nil)
	require.NoError(t, err)

	writer := fdw.(core.RowWriter)
	err = writer.Delete(context.Background(), value.NewInt64(1))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestModifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	fdw := newTestWrapper(t, srv.URL)
	writer := fdw.(core.RowWriter)

	err := writer.Delete(context.Background(), value.NewInt64(1))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeRequest))
	assert.Contains(t, err.Error(), "write failed with status 422")
}
