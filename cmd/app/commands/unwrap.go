package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
	"github.com/l2obin/dekbind/internal/dek/http/dto"
	dekUseCase "github.com/l2obin/dekbind/internal/dek/usecase"
)

// UnwrapOptions holds the unwrap command flags.
type UnwrapOptions struct {
	AllowFallback bool
	// Wrapped is a base64 wrapped DEK; empty reads the key store.
	Wrapped string
	// Reveal prints the plaintext DEK.
	Reveal bool
}

// unwrapOutput is the JSON form of an unwrap, with the DEK when revealed.
type unwrapOutput struct {
	dto.UnwrapResponse
	Dek string `json:"dek,omitempty"`
}

// RunUnwrap unwraps a DEK and reports the KEK source. With Reveal the DEK is
// printed as base64; it is zeroized when the command exits either way.
func RunUnwrap(
	ctx context.Context,
	manager dekUseCase.DekManager,
	logger *slog.Logger,
	w io.Writer,
	opts UnwrapOptions,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	var wrapped cryptoDomain.WrappedDek
	if opts.Wrapped != "" {
		parsed, err := cryptoDomain.ParseWrappedDek(opts.Wrapped)
		if err != nil {
			return fmt.Errorf("invalid wrapped DEK: %w", err)
		}
		wrapped = parsed
	}

	result, err := manager.Unwrap(ctx, opts.AllowFallback, wrapped)
	if err != nil {
		return fmt.Errorf("failed to unwrap DEK: %w", err)
	}

	logger.Info("DEK unwrapped", slog.String("kek_source", string(result.KekSource)))

	output := unwrapOutput{UnwrapResponse: dto.MapUnwrapResultToResponse(result)}
	if opts.Reveal {
		exposed, ok := manager.Exposed()
		if !ok {
			return fmt.Errorf("DEK is no longer exposed")
		}
		output.Dek = exposed.Encoded
	}

	if format == "json" {
		return outputJSON(w, output)
	}

	_, _ = fmt.Fprintf(w, "KEK source: %s\n", output.KekSource)
	_, _ = fmt.Fprintf(w, "Expires at: %s\n", output.ExpiresAt.Format(time.RFC3339))
	if output.Dek != "" {
		_, _ = fmt.Fprintf(w, "DEK:        %s\n", output.Dek)
	}
	return nil
}
