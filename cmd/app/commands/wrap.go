package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/l2obin/dekbind/internal/dek/http/dto"
	dekUseCase "github.com/l2obin/dekbind/internal/dek/usecase"
)

// RunWrap generates a fresh DEK and wraps it in the same process, since the
// plaintext never outlives a CLI invocation. The wrapped DEK is persisted in
// the key store and printed.
//
// Requirements: the sql key store drivers must be migrated.
func RunWrap(
	ctx context.Context,
	manager dekUseCase.DekManager,
	logger *slog.Logger,
	w io.Writer,
	allowFallback bool,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	if _, err := manager.Generate(ctx); err != nil {
		return fmt.Errorf("failed to generate DEK: %w", err)
	}

	result, err := manager.Wrap(ctx, allowFallback)
	if err != nil {
		return fmt.Errorf("failed to wrap DEK: %w", err)
	}

	logger.Info("DEK wrapped", slog.String("kek_source", string(result.KekSource)))

	response := dto.MapWrapResultToResponse(result)
	if format == "json" {
		return outputJSON(w, response)
	}

	_, _ = fmt.Fprintf(w, "Wrapped DEK: %s\n", response.Wrapped)
	_, _ = fmt.Fprintf(w, "KEK source:  %s\n", response.KekSource)
	return nil
}
