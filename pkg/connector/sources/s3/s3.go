// Package s3 implements the object-store wrapper: a foreign table
// backed by JSON objects under a bucket prefix. Each object holds a
// JSON array of records, one record object, or newline-delimited
// records; objects ending in .gz are decompressed transparently.
//
// The wrapper follows the same scan lifecycle as the REST wrappers:
// one bridged fetch per scan, the whole materialized result buffered,
// drained row by row.
package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/openfdw/openfdw/pkg/coerce"
	"github.com/openfdw/openfdw/pkg/config"
	"github.com/openfdw/openfdw/pkg/connector/base"
	"github.com/openfdw/openfdw/pkg/connector/core"
	fdwerrors "github.com/openfdw/openfdw/pkg/errors"
	"github.com/openfdw/openfdw/pkg/observability"
	"github.com/openfdw/openfdw/pkg/runtime"
	"github.com/openfdw/openfdw/pkg/secrets"
	"github.com/openfdw/openfdw/pkg/value"
)

const (
	// WrapperName identifies this wrapper in the registry.
	WrapperName = "s3"

	// OptionBucket names the bucket to read. Required for table
	// objects; enforced by Validator.
	OptionBucket = "bucket"
	// OptionPrefix restricts the scan to keys under a prefix.
	OptionPrefix = "prefix"
	// OptionRegion selects the bucket region.
	OptionRegion = "region"

	// maxKeysPerScan bounds one scan's object listing.
	maxKeysPerScan = 1000
)

// API is the subset of the S3 client this wrapper uses. Tests inject
// a fake; production uses the AWS SDK client.
type API interface {
	ListObjectsV2(ctx context.Context, params *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

// Wrapper is an S3 foreign table wrapper instance.
type Wrapper struct {
	*base.BaseWrapper

	client API
}

// New constructs a wrapper instance.
//
// The AWS credential may arrive through the generic secret
// indirection: a resolved credential of the form
// "ACCESS_KEY_ID:SECRET_ACCESS_KEY" becomes a static provider;
// otherwise the SDK's default chain is used. A failure to assemble
// AWS configuration is not a construction failure: the wrapper is
// built without a client and scans degrade to empty results.
func New(ctx context.Context, options config.Options, store secrets.Store) (core.ForeignDataWrapper, error) {
	w := &Wrapper{
		BaseWrapper: base.NewBaseWrapper(WrapperName),
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region, ok := options.Get(OptionRegion); ok {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	if cred, ok := secrets.ResolveCredential(ctx, options, store); ok {
		id, secret, found := strings.Cut(cred, ":")
		if !found {
			return nil, fdwerrors.New(fdwerrors.ErrorTypeConfig,
				"credential must have the form ACCESS_KEY_ID:SECRET_ACCESS_KEY")
		}
		loadOpts = append(loadOpts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(id, secret, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		w.Logger().Warn("failed to load aws configuration, scans will return empty results", zap.Error(err))
		return w, nil
	}
	w.client = awss3.NewFromConfig(cfg)
	return w, nil
}

// NewWithClient constructs a wrapper around an injected API client.
func NewWithClient(client API) *Wrapper {
	return &Wrapper{
		BaseWrapper: base.NewBaseWrapper(WrapperName),
		client:      client,
	}
}

// BeginScan lists the prefix, fetches each JSON object, and buffers
// the coerced rows. A missing bucket or key is an empty result, not an
// error. The limit hint is honored by stopping early; quals and sorts
// are ignored and left to caller post-filtering.
func (w *Wrapper) BeginScan(ctx context.Context, quals []value.Qual, columns []value.Column, sorts []value.Sort, limit *value.Limit, options config.Options) error {
	ctx, span := observability.StartScanSpan(ctx, WrapperName, "begin_scan")
	defer span.End()

	bucket, ok := options.Get(OptionBucket)
	if !ok {
		w.Logger().Warn("required option 'bucket' not specified, returning empty scan")
		w.SetRows(nil)
		return nil
	}

	if w.client == nil {
		w.SetRows(nil)
		return nil
	}

	prefix := options.GetDefault(OptionPrefix, "")

	var maxRecords int64 = -1
	if limit != nil && limit.Count >= 0 {
		maxRecords = limit.Offset + limit.Count
	}

	start := time.Now()
	records, err := runtime.BlockOn(w.Runtime(), ctx, func(ctx context.Context) ([]coerce.Record, error) {
		return w.fetch(ctx, bucket, prefix, maxRecords)
	})
	w.Collector().ObserveRequest(time.Since(start))
	if err != nil {
		if isMissing(err) {
			// absent bucket or key is a legitimately empty resource
			w.SetRows(nil)
			return nil
		}
		w.ScanFailed()
		return fdwerrors.Wrap(err, fdwerrors.ErrorTypeConnection, "object fetch failed")
	}

	rows, err := coerce.RecordsToRows(records, columns)
	if err != nil {
		w.ScanFailed()
		return err
	}

	w.SetRows(rows)
	w.Logger().Debug("scan buffered",
		zap.String("bucket", bucket),
		zap.String("prefix", prefix),
		zap.Int("rows", len(rows)))
	return nil
}

// fetch lists and reads every JSON object under the prefix, stopping
// once maxRecords records are collected (negative means unbounded).
func (w *Wrapper) fetch(ctx context.Context, bucket, prefix string, maxRecords int64) ([]coerce.Record, error) {
	list, err := w.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(maxKeysPerScan),
	})
	if err != nil {
		return nil, err
	}

	var records []coerce.Record
	for _, obj := range list.Contents {
		if obj.Key == nil || !readableKey(*obj.Key) {
			continue
		}
		objRecords, err := w.readObject(ctx, bucket, *obj.Key)
		if err != nil {
			return nil, err
		}
		records = append(records, objRecords...)
		if maxRecords >= 0 && int64(len(records)) >= maxRecords {
			records = records[:maxRecords]
			break
		}
	}
	return records, nil
}

func (w *Wrapper) readObject(ctx context.Context, bucket, key string) ([]coerce.Record, error) {
	out, err := w.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	var reader io.Reader = out.Body
	name := key
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(out.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
		name = strings.TrimSuffix(name, ".gz")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(name, ".jsonl") {
		return decodeLines(data)
	}
	return decodeDocument(data)
}

// decodeDocument accepts either a JSON array of records or one record
// object.
func decodeDocument(data []byte) ([]coerce.Record, error) {
	trimmed := strings.TrimLeftFunc(string(data), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if strings.HasPrefix(trimmed, "[") {
		return coerce.DecodeRecords(data)
	}
	rec, err := coerce.DecodeObject(data)
	if err != nil {
		return nil, err
	}
	return []coerce.Record{rec}, nil
}

// decodeLines decodes newline-delimited JSON records.
func decodeLines(data []byte) ([]coerce.Record, error) {
	var records []coerce.Record
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := coerce.DecodeObject([]byte(line))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func readableKey(key string) bool {
	name := strings.TrimSuffix(key, ".gz")
	return strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".jsonl")
}

// isMissing reports whether err means the bucket or key does not
// exist.
func isMissing(err error) bool {
	var noBucket *types.NoSuchBucket
	var noKey *types.NoSuchKey
	return errors.As(err, &noBucket) || errors.As(err, &noKey)
}

// Validator enforces the wrapper's required options at definition
// time.
func Validator(options config.Options, kind core.ObjectKind) error {
	if kind != core.ObjectKindTable {
		return nil
	}
	_, err := options.Require(OptionBucket)
	return err
}

// Metadata returns the wrapper's static identification.
func Metadata() core.Metadata {
	return core.Metadata{
		Name:    WrapperName,
		Version: "0.1.0",
		Author:  "openfdw",
		Website: "https://github.com/openfdw/openfdw/tree/main/pkg/connector/sources/s3",
	}
}
