package usecase

import (
	"context"
	"time"

	authnDomain "github.com/l2obin/dekbind/internal/authn/domain"
	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
	dekDomain "github.com/l2obin/dekbind/internal/dek/domain"
	"github.com/l2obin/dekbind/internal/metrics"
)

const metricsDomain = "dek"

// dekManagerWithMetrics decorates DekManager with metrics instrumentation.
type dekManagerWithMetrics struct {
	next    DekManager
	metrics metrics.BusinessMetrics
}

// NewDekManagerWithMetrics wraps a DekManager with metrics recording.
func NewDekManagerWithMetrics(next DekManager, m metrics.BusinessMetrics) DekManager {
	return &dekManagerWithMetrics{
		next:    next,
		metrics: m,
	}
}

// record labels failures with their error kind so hardware aborts and tamper
// rejections are distinguishable on dashboards.
func (d *dekManagerWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = dekDomain.KindOf(err).String()
	}
	d.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	d.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (d *dekManagerWithMetrics) Generate(ctx context.Context) (*dekDomain.Exposure, error) {
	start := time.Now()
	exposure, err := d.next.Generate(ctx)
	d.record(ctx, "dek_generate", start, err)
	return exposure, err
}

func (d *dekManagerWithMetrics) Wrap(ctx context.Context, allowFallback bool) (*dekDomain.WrapResult, error) {
	start := time.Now()
	result, err := d.next.Wrap(ctx, allowFallback)
	operation := "dek_wrap"
	if err == nil {
		operation += "_" + string(result.KekSource)
	}
	d.record(ctx, operation, start, err)
	return result, err
}

func (d *dekManagerWithMetrics) Unwrap(
	ctx context.Context,
	allowFallback bool,
	wrapped cryptoDomain.WrappedDek,
) (*dekDomain.UnwrapResult, error) {
	start := time.Now()
	result, err := d.next.Unwrap(ctx, allowFallback, wrapped)
	operation := "dek_unwrap"
	if err == nil {
		operation += "_" + string(result.KekSource)
	}
	d.record(ctx, operation, start, err)
	return result, err
}

func (d *dekManagerWithMetrics) EnsureCredential(ctx context.Context) (authnDomain.CredentialID, error) {
	start := time.Now()
	id, err := d.next.EnsureCredential(ctx)
	d.record(ctx, "credential_ensure", start, err)
	return id, err
}

func (d *dekManagerWithMetrics) Status(ctx context.Context) (*dekDomain.Status, error) {
	return d.next.Status(ctx)
}

func (d *dekManagerWithMetrics) Exposed() (*dekDomain.ExposedDek, bool) {
	return d.next.Exposed()
}

func (d *dekManagerWithMetrics) Encrypt(ctx context.Context, plaintext []byte) (dekDomain.Sealed, error) {
	start := time.Now()
	sealed, err := d.next.Encrypt(ctx, plaintext)
	d.record(ctx, "dek_encrypt", start, err)
	return sealed, err
}

func (d *dekManagerWithMetrics) Decrypt(ctx context.Context, sealed dekDomain.Sealed) ([]byte, error) {
	start := time.Now()
	plaintext, err := d.next.Decrypt(ctx, sealed)
	d.record(ctx, "dek_decrypt", start, err)
	return plaintext, err
}

func (d *dekManagerWithMetrics) Close() {
	d.next.Close()
}
