package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/l2obin/dekbind/internal/dek/http/dto"
	dekUseCase "github.com/l2obin/dekbind/internal/dek/usecase"
)

// RunCreateCredential binds the authenticator credential, creating it on the
// first run, and prints its id. The client id is provisioned alongside.
func RunCreateCredential(
	ctx context.Context,
	manager dekUseCase.DekManager,
	logger *slog.Logger,
	w io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	id, err := manager.EnsureCredential(ctx)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}

	response := dto.MapCredentialToResponse(id)
	logger.Info("credential ready", slog.String("credential_id", response.CredentialID))

	if format == "json" {
		return outputJSON(w, response)
	}

	_, _ = fmt.Fprintf(w, "Credential ID: %s\n", response.CredentialID)
	return nil
}
