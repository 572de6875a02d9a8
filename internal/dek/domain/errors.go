package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/l2obin/dekbind/internal/errors"
)

// Kind is the closed set of failure classes a DEK operation reports.
type Kind int

const (
	KindUnknown Kind = iota
	KindRandomSourceUnavailable
	KindCredentialCreation
	KindHardwareSecretUnavailable
	KindNoDekAvailable
	KindNoWrappedDek
	KindUnwrapAuthFailure
	KindStorage
	KindDecryptAuthFailure
)

var kindNames = map[Kind]string{
	KindUnknown:                   "unknown",
	KindRandomSourceUnavailable:   "random_source_unavailable",
	KindCredentialCreation:        "credential_creation",
	KindHardwareSecretUnavailable: "hardware_secret_unavailable",
	KindNoDekAvailable:            "no_dek_available",
	KindNoWrappedDek:              "no_wrapped_dek",
	KindUnwrapAuthFailure:         "unwrap_auth_failure",
	KindStorage:                   "storage",
	KindDecryptAuthFailure:        "decrypt_auth_failure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Category returns the application error category used for status mapping,
// or nil for kinds that are internal failures.
func (k Kind) Category() error {
	switch k {
	case KindNoDekAvailable, KindNoWrappedDek:
		return apperrors.ErrPreconditionFailed
	case KindHardwareSecretUnavailable:
		return apperrors.ErrForbidden
	case KindUnwrapAuthFailure, KindDecryptAuthFailure:
		return apperrors.ErrInvalidInput
	case KindCredentialCreation:
		return apperrors.ErrUnavailable
	default:
		return nil
	}
}

// Error is the error type returned by every DekManager operation.
//
// errors.Is matches it against the Err* kind sentinels below, against its
// application category and against the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// NewError builds an Error for op. A nil cause is allowed.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString("dek ")
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(strings.ReplaceAll(e.Kind.String(), "_", " "))
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// ErrorCode returns the kind name exposed to API clients.
func (e *Error) ErrorCode() string {
	return e.Kind.String()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if category := e.Kind.Category(); category != nil {
		errs = append(errs, category)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Is matches a bare kind sentinel (no Op, no Err) of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's tree, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if apperrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Kind sentinels for errors.Is.
var (
	ErrRandomSourceUnavailable   = &Error{Kind: KindRandomSourceUnavailable}
	ErrCredentialCreation        = &Error{Kind: KindCredentialCreation}
	ErrHardwareSecretUnavailable = &Error{Kind: KindHardwareSecretUnavailable}
	ErrNoDekAvailable            = &Error{Kind: KindNoDekAvailable}
	ErrNoWrappedDek              = &Error{Kind: KindNoWrappedDek}
	ErrUnwrapAuthFailure         = &Error{Kind: KindUnwrapAuthFailure}
	ErrStorage                   = &Error{Kind: KindStorage}
	ErrDecryptAuthFailure        = &Error{Kind: KindDecryptAuthFailure}
)
