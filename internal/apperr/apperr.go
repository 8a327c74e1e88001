package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so callers can tell "nothing was saved" apart
// from "story saved but words unlinked" and decide what to surface.
type Kind string

const (
	KindGeneration  Kind = "generation_failed"
	KindEnrichment  Kind = "enrichment_failed"
	KindSynthesis   Kind = "synthesis_failed"
	KindStorage     Kind = "storage_failed"
	KindPersistence Kind = "persistence_failed"
	KindCache       Kind = "cache_failed"
	KindLink        Kind = "link_failed"
	KindJobNotFound Kind = "job_not_found"
	KindJobTimeout  Kind = "job_timeout"
	KindValidation  Kind = "validation_failed"
	KindAuth        Kind = "unauthorized"
	KindNotFound    Kind = "not_found"
	KindUnknown     Kind = "unknown"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string, err error, details map[string]any) *Error {
	return &Error{Kind: kind, Message: message, Err: err, Details: details}
}

// KindOf walks the wrap chain and returns the first Kind it finds.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a kind to the status the HTTP layer responds with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound, KindJobNotFound:
		return http.StatusNotFound
	case KindGeneration, KindEnrichment, KindSynthesis, KindStorage, KindPersistence:
		return http.StatusBadGateway
	case KindJobTimeout:
		return http.StatusGatewayTimeout
	case KindLink:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
