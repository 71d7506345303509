package transport

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/minio/minio-go/v7"
)

var (
	// ErrConfigurationMissing blocks dispatch until the setup is fixed.
	ErrConfigurationMissing = errors.New("configuration missing")
	// ErrTransportFailure means the remote side was never reached or the
	// exchange broke off. Retrying may help.
	ErrTransportFailure = errors.New("transport failure")
	// ErrRemoteRejection means the remote side answered with a refusal.
	ErrRemoteRejection = errors.New("remote rejection")
	// ErrResponseUnparseable is reported for a 2xx response we cannot read.
	ErrResponseUnparseable = errors.New("invalid response")
)

// UploadError pairs a sentinel kind with the human-readable reason shown on
// the item. Error returns the reason alone.
type UploadError struct {
	Kind   error
	Reason string
	Err    error
}

func (e *UploadError) Error() string {
	return e.Reason
}

func (e *UploadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newUploadError(kind error, reason string, err error) *UploadError {
	return &UploadError{Kind: kind, Reason: reason, Err: err}
}

// classify turns a storage or database error into an UploadError. Errors
// carrying a backend message become rejections with that message verbatim.
func classify(op string, err error) *UploadError {
	var ue *UploadError
	if errors.As(err, &ue) {
		return ue
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return newUploadError(ErrRemoteRejection, pgErr.Message, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorMessage() != "" {
		return newUploadError(ErrRemoteRejection, apiErr.ErrorMessage(), err)
	}
	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) && minioErr.Message != "" {
		return newUploadError(ErrRemoteRejection, minioErr.Message, err)
	}
	return newUploadError(ErrTransportFailure, fmt.Sprintf("%s: %v", op, err), err)
}

func configurationMissing(what string) error {
	return fmt.Errorf("%w: %s", ErrConfigurationMissing, what)
}
