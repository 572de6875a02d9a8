package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertMetricLine matches a sample by name, a partial label pattern and its
// value, leaving room for the otel_scope labels the exporter adds.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("dekbind")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "dekbind")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOperation(ctx, "dek", "dek_generate", "success")
	bm.RecordOperation(ctx, "dek", "dek_generate", "success")
	bm.RecordOperation(ctx, "dek", "dek_wrap", "hardware_secret_unavailable")
	bm.RecordOperation(ctx, "dek", "dek_unwrap_fallback", "success")
	bm.RecordDuration(ctx, "dek", "dek_generate", 200*time.Microsecond, "success")
	bm.RecordDuration(ctx, "dek", "dek_wrap_hardware", 12*time.Second, "success")

	output := scrape(t, provider)

	t.Run("CountsByOutcome", func(t *testing.T) {
		assertMetricLine(t, output, `dekbind_operations_total`,
			`domain="dek".*operation="dek_generate".*status="success"`, `2`)
		assertMetricLine(t, output, `dekbind_operations_total`,
			`operation="dek_wrap".*status="hardware_secret_unavailable"`, `1`)
		assertMetricLine(t, output, `dekbind_operations_total`,
			`operation="dek_unwrap_fallback".*status="success"`, `1`)
	})

	t.Run("PromptLatencyBuckets", func(t *testing.T) {
		assertMetricLine(t, output, `dekbind_operation_duration_seconds_bucket`,
			`operation="dek_wrap_hardware".*le="10"`, `0`)
		assertMetricLine(t, output, `dekbind_operation_duration_seconds_bucket`,
			`operation="dek_wrap_hardware".*le="30"`, `1`)
		assertMetricLine(t, output, `dekbind_operation_duration_seconds_bucket`,
			`operation="dek_generate".*le="0.001"`, `1`)
	})
}

func TestNewNoOpBusinessMetrics(t *testing.T) {
	bm := NewNoOpBusinessMetrics()

	assert.NotPanics(t, func() {
		bm.RecordOperation(context.Background(), "dek", "dek_generate", "success")
		bm.RecordDuration(context.Background(), "dek", "dek_wrap_hardware", time.Second, "unwrap_auth_failure")
	})
}
