package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfdw/openfdw/pkg/config"
	"github.com/openfdw/openfdw/pkg/connector/base"
	"github.com/openfdw/openfdw/pkg/connector/core"
	"github.com/openfdw/openfdw/pkg/errors"
	"github.com/openfdw/openfdw/pkg/secrets"
	"github.com/openfdw/openfdw/pkg/value"
)

type stubWrapper struct {
	*base.BaseWrapper
}

func (w *stubWrapper) BeginScan(ctx context.Context, quals []value.Qual, columns []value.Column, sorts []value.Sort, limit *value.Limit, options config.Options) error {
	w.SetRows(nil)
	return nil
}

func stubDefinition(name string) Definition {
	return Definition{
		Metadata: core.Metadata{Name: name, Version: "1.0.0"},
		Factory: func(ctx context.Context, options config.Options, store secrets.Store) (core.ForeignDataWrapper, error) {
			return &stubWrapper{BaseWrapper: base.NewBaseWrapper(name)}, nil
		},
	}
}

func TestRegistryRegisterAndNew(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubDefinition("stub")))

	assert.True(t, r.Has("stub"))
	assert.False(t, r.Has("other"))

	fdw, err := r.New(context.Background(), "stub", config.Options{}, nil)
	require.NoError(t, err)
	require.NotNil(t, fdw)

	require.NoError(t, fdw.BeginScan(context.Background(), nil, nil, nil, nil, config.Options{}))
	_, ok := fdw.IterScan()
	assert.False(t, ok)
	fdw.EndScan()
}

func TestRegistryRejectsInvalidDefinitions(t *testing.T) {
	r := NewRegistry()

	err := r.Register(Definition{Metadata: core.Metadata{Name: ""}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no name")

	err = r.Register(Definition{Metadata: core.Metadata{Name: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no factory")
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubDefinition("dup")))

	err := r.Register(stubDefinition("dup"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistryUnknownWrapper(t *testing.T) {
	r := NewRegistry()

	_, err := r.New(context.Background(), "ghost", config.Options{}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	err = r.Validate("ghost", config.Options{}, core.ObjectKindTable)
	assert.Error(t, err)

	_, err = r.Metadata("ghost")
	assert.Error(t, err)
}

func TestRegistryValidate(t *testing.T) {
	r := NewRegistry()

	def := stubDefinition("checked")
	def.Validator = func(options config.Options, kind core.ObjectKind) error {
		if _, err := options.Require("bucket"); err != nil {
			return err
		}
		return nil
	}
	require.NoError(t, r.Register(def))

	// wrapper without a validator accepts anything
	require.NoError(t, r.Register(stubDefinition("open")))
	assert.NoError(t, r.Validate("open", config.Options{}, core.ObjectKindTable))

	assert.Error(t, r.Validate("checked", config.Options{}, core.ObjectKindTable))
	assert.NoError(t, r.Validate("checked", config.Options{"bucket": "b"}, core.ObjectKindTable))
}

func TestRegistryListAndMetadata(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubDefinition("a")))
	require.NoError(t, r.Register(stubDefinition("b")))

	metas := r.List()
	assert.Len(t, metas, 2)

	meta, err := r.Metadata("a")
	require.NoError(t, err)
	assert.Equal(t, "a", meta.Name)
	assert.Equal(t, "1.0.0", meta.Version)
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubDefinition("gone")))
	r.Clear()
	assert.False(t, r.Has("gone"))
}
