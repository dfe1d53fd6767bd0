package backend

import (
	"errors"
	"net/http"

	apperrors "github.com/spec-kit/admin-console/pkg/util"
)

// withFallback replaces the generic status text of a refused delete with a
// message the operator can act on. Session failures pass through untouched.
func withFallback(err error, fallback string) error {
	if err == nil || apperrors.IsSessionError(err) {
		return err
	}
	var de *apperrors.DomainError
	if !errors.As(err, &de) || de.HTTPStatus == 0 {
		return err
	}
	if de.Message == "" || de.Message == http.StatusText(de.HTTPStatus) {
		copied := *de
		copied.Message = fallback
		return &copied
	}
	return err
}
