package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/l2obin/dekbind/internal/dek/http/dto"
	dekUseCase "github.com/l2obin/dekbind/internal/dek/usecase"
)

// RunStatus prints whether a credential, a client id and a wrapped DEK are
// persisted, and the last observed hmac-secret support. Never prompts the
// authenticator.
func RunStatus(
	ctx context.Context,
	manager dekUseCase.DekManager,
	logger *slog.Logger,
	w io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	status, err := manager.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}

	logger.Debug("status read", slog.Bool("credential_present", status.CredentialPresent))

	response := dto.MapStatusToResponse(status)
	if format == "json" {
		return outputJSON(w, response)
	}

	hardware := "unknown"
	if response.HardwareSecretSupported != nil {
		hardware = yesNo(*response.HardwareSecretSupported)
	}

	_, _ = fmt.Fprintf(w, "Credential:              %s\n", yesNo(response.CredentialPresent))
	_, _ = fmt.Fprintf(w, "Client ID:               %s\n", yesNo(response.ClientIDPresent))
	_, _ = fmt.Fprintf(w, "Hardware secret support: %s\n", hardware)
	_, _ = fmt.Fprintf(w, "Wrapped DEK:             %s\n", yesNo(response.WrappedDekPresent))
	if response.ExposedUntil != nil {
		_, _ = fmt.Fprintf(w, "DEK exposed until:       %s\n", response.ExposedUntil.Format(time.RFC3339))
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
