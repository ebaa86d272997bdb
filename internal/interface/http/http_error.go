package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/support-expert/pkg/errors"
)

// HTTPError is a failure with its response status and public code.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error { return e.Err }

func (e *HTTPError) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error()
}

// NewHTTPError builds an HTTPError.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// fromAppError maps domain error codes onto HTTP statuses.
func fromAppError(err error, fallback string) *HTTPError {
	code := apperrors.Code(err)
	switch code {
	case apperrors.CodeInvalidInput:
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case apperrors.CodeInvalidCredentials:
		return NewHTTPError(http.StatusUnauthorized, code, errMessage(err), err)
	case apperrors.CodeEmbedding, apperrors.CodeNLP, apperrors.CodeLLM:
		return NewHTTPError(http.StatusBadGateway, code, errMessage(err), err)
	case apperrors.CodeStorage, apperrors.CodeSync:
		return NewHTTPError(http.StatusInternalServerError, code, errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, fallback, errMessage(err), err)
	}
}

// asHTTPError passes HTTPErrors through and maps everything else by its
// domain code.
func asHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	mapped := fromAppError(err, "internal_error")
	if mapped.Code == "internal_error" {
		mapped.Message = "something went wrong"
	}
	return mapped
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
