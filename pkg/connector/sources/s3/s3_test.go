package s3

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfdw/openfdw/pkg/config"
	"github.com/openfdw/openfdw/pkg/connector/core"
	fdwerrors "github.com/openfdw/openfdw/pkg/errors"
	"github.com/openfdw/openfdw/pkg/secrets"
	"github.com/openfdw/openfdw/pkg/value"
)

// fakeAPI serves objects from an in-memory map, recording the listing
// prefix it was asked for.
type fakeAPI struct {
	objects    map[string][]byte
	listErr    error
	getErr     error
	seenPrefix string
}

func (f *fakeAPI) ListObjectsV2(ctx context.Context, params *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.seenPrefix = aws.ToString(params.Prefix)
	out := &awss3.ListObjectsV2Output{}
	for key := range f.objects {
		if strings.HasPrefix(key, f.seenPrefix) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
		}
	}
	return out, nil
}

func (f *fakeAPI) GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &awss3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

var testColumns = []value.Column{
	{Name: "id", Type: value.ColumnTypeInt4},
	{Name: "name", Type: value.ColumnTypeText},
}

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(data)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func drain(t *testing.T, w *Wrapper) []int64 {
	t.Helper()
	var ids []int64
	for {
		row, ok := w.IterScan()
		if !ok {
			return ids
		}
		cell, found := row.Get("id")
		require.True(t, found)
		ids = append(ids, cell.Int())
	}
}

func TestScanJSONArrayObject(t *testing.T) {
	w := NewWithClient(&fakeAPI{objects: map[string][]byte{
		"data/a.json": []byte(`[{"id": 1, "name": "a"}, {"id": 2, "name": "b"}]`),
	}})

	opts := config.Options{OptionBucket: "b", OptionPrefix: "data/"}
	require.NoError(t, w.BeginScan(context.Background(), nil, testColumns, nil, nil, opts))
	defer w.EndScan()

	assert.Equal(t, []int64{1, 2}, drain(t, w))
}

func TestScanSingleObjectDocument(t *testing.T) {
	w := NewWithClient(&fakeAPI{objects: map[string][]byte{
		"one.json": []byte(`{"id": 5, "name": "solo"}`),
	}})

	require.NoError(t, w.BeginScan(context.Background(), nil, testColumns, nil, nil, config.Options{OptionBucket: "b"}))
	assert.Equal(t, []int64{5}, drain(t, w))
}

func TestScanNewlineDelimited(t *testing.T) {
	w := NewWithClient(&fakeAPI{objects: map[string][]byte{
		"log.jsonl": []byte("{\"id\": 1, \"name\": \"a\"}\n\n{\"id\": 2, \"name\": \"b\"}\n"),
	}})

	require.NoError(t, w.BeginScan(context.Background(), nil, testColumns, nil, nil, config.Options{OptionBucket: "b"}))
	assert.Equal(t, []int64{1, 2}, drain(t, w))
}

func TestScanGzippedObject(t *testing.T) {
	w := NewWithClient(&fakeAPI{objects: map[string][]byte{
		"data.json.gz": gzipped(t, []byte(`[{"id": 3, "name": "z"}]`)),
	}})

	require.NoError(t, w.BeginScan(context.Background(), nil, testColumns, nil, nil, config.Options{OptionBucket: "b"}))
	assert.Equal(t, []int64{3}, drain(t, w))
}

func TestScanSkipsUnreadableKeys(t *testing.T) {
	w := NewWithClient(&fakeAPI{objects: map[string][]byte{
		"data.json":  []byte(`[{"id": 1, "name": "a"}]`),
		"readme.txt": []byte("not json"),
		"image.png":  {0x89, 0x50},
	}})

	require.NoError(t, w.BeginScan(context.Background(), nil, testColumns, nil, nil, config.Options{OptionBucket: "b"}))
	assert.Equal(t, []int64{1}, drain(t, w))
}

func TestScanHonorsLimit(t *testing.T) {
	w := NewWithClient(&fakeAPI{objects: map[string][]byte{
		"data.json": []byte(`[{"id": 1, "name": "a"}, {"id": 2, "name": "b"}, {"id": 3, "name": "c"}]`),
	}})

	limit := &value.Limit{Count: 2}
	require.NoError(t, w.BeginScan(context.Background(), nil, testColumns, nil, limit, config.Options{OptionBucket: "b"}))
	assert.Len(t, drain(t, w), 2)
}

func TestScanMissingBucketOptionIsEmpty(t *testing.T) {
	w := NewWithClient(&fakeAPI{})

	require.NoError(t, w.BeginScan(context.Background(), nil, testColumns, nil, nil, config.Options{}))
	assert.Empty(t, drain(t, w))
}

func TestScanAbsentBucketIsEmpty(t *testing.T) {
	w := NewWithClient(&fakeAPI{listErr: &types.NoSuchBucket{}})

	// a nonexistent bucket is an empty table, not a failure
	require.NoError(t, w.BeginScan(context.Background(), nil, testColumns, nil, nil, config.Options{OptionBucket: "ghost"}))
	assert.Empty(t, drain(t, w))
}

func TestScanTransportFailure(t *testing.T) {
	w := NewWithClient(&fakeAPI{listErr: fdwerrors.New(fdwerrors.ErrorTypeConnection, "dial timeout")})

	err := w.BeginScan(context.Background(), nil, testColumns, nil, nil, config.Options{OptionBucket: "b"})
	require.Error(t, err)
	assert.True(t, fdwerrors.IsType(err, fdwerrors.ErrorTypeConnection))
	assert.Empty(t, drain(t, w))
}

func TestScanCoercionMismatchFails(t *testing.T) {
	w := NewWithClient(&fakeAPI{objects: map[string][]byte{
		"bad.json": []byte(`[{"id": "oops", "name": "a"}]`),
	}})

	err := w.BeginScan(context.Background(), nil, testColumns, nil, nil, config.Options{OptionBucket: "b"})
	require.Error(t, err)
	assert.True(t, fdwerrors.IsType(err, fdwerrors.ErrorTypeData))
}

func TestNewRejectsMalformedCredential(t *testing.T) {
	_, err := New(context.Background(), config.Options{
		secrets.OptionAPIKey: "missing-separator",
	}, nil)
	require.Error(t, err)
	assert.True(t, fdwerrors.IsType(err, fdwerrors.ErrorTypeConfig))
	assert.Contains(t, err.Error(), "ACCESS_KEY_ID:SECRET_ACCESS_KEY")
}

func TestValidator(t *testing.T) {
	assert.Error(t, Validator(config.Options{}, core.ObjectKindTable))
	assert.NoError(t, Validator(config.Options{OptionBucket: "b"}, core.ObjectKindTable))
	assert.NoError(t, Validator(config.Options{}, core.ObjectKindServer))
}
