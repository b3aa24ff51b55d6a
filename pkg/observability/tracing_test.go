package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartScanSpanWithoutInit(t *testing.T) {
	// against the default no-op provider spans exist but record nothing
	ctx, span := StartScanSpan(context.Background(), "logflare", "begin_scan")
	require.NotNil(t, span)
	assert.NotNil(t, ctx)
	assert.False(t, span.IsRecording())
	span.End()
}

func TestInitAndShutdown(t *testing.T) {
	require.NoError(t, Init(DefaultConfig()))

	_, span := StartScanSpan(context.Background(), "s3", "begin_scan")
	assert.True(t, span.IsRecording())
	span.End()

	assert.NoError(t, Shutdown(context.Background()))
}

func TestSamplerSelection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SamplingRate = 0

	require.NoError(t, Init(cfg))

	_, span := StartScanSpan(context.Background(), "logflare", "iter_scan")
	assert.False(t, span.IsRecording())
	span.End()

	assert.NoError(t, Shutdown(context.Background()))
}
