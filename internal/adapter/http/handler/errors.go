package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
)

const internalErrorMessage = "the server encountered a problem and could not process your request"

func errorResponse(w http.ResponseWriter, status int, message any) {
	env := envelope{"error": message}

	// Write the response using the writeJSON() helper. If this happens to return an
	// error then log it, and fall back to sending the client an empty response with a
	// 500 Internal Server Error status code.
	if err := writeJSON(w, status, env, nil); err != nil {
		w.WriteHeader(500)
	}
}

// failedValidationResponse returns 422 UnprocessableEntity status.
// Why we choose 422 status?
// The HTTP 422 Unprocessable Content client error response status code indicates
// that the server understood the content type of the request content, and the
// syntax of the request content was correct, but it was unable to process the
// contained instructions.
// Clients that receive a 422 response should expect that repeating the request
// without modification will fail with the same error.
func failedValidationResponse(w http.ResponseWriter, errors map[string]string) {
	errorResponse(w, http.StatusUnprocessableEntity, errors)
}

// badRequestResponse returns 400 BadRequest status
// The HTTP 400 Bad Request client error response status code indicates that
// the server would not process the request due to something the server considered
// to be a client error. The reason for a 400 response is typically due to malformed
// request syntax, invalid request message framing, or deceptive request routing.
func badRequestResponse(w http.ResponseWriter, message any) {
	errorResponse(w, http.StatusBadRequest, message)
}

// internalErrorResponse returns 500 InternalServerError status
//
// The HTTP 500 Internal Server Error server error response status code indicates
// that the server encountered an unexpected condition that prevented it from fulfilling
// the request. This error is a generic "catch-all" response to server issues.
func internalErrorResponse(w http.ResponseWriter, message any) {
	errorResponse(w, http.StatusInternalServerError, message)
}

// serviceErrorResponse answers with a status derived from err.
// Business rule failures are warnings with their message on the wire,
// anything mapped to 500 is logged as an error and hidden from the client.
func serviceErrorResponse(ctx context.Context, w http.ResponseWriter, l logger.Logger, msg string, err error) {
	code := GetCode(err)
	if code >= http.StatusInternalServerError {
		l.Error(wrap.ErrorCtx(ctx, err), msg, err)
		message := internalErrorMessage
		if errors.Is(err, types.ErrSnapshotFailed) {
			message = types.ErrSnapshotFailed.Error()
		}
		internalErrorResponse(w, message)
		return
	}

	l.Warn(wrap.ErrorCtx(ctx, err), msg, "error", err.Error())
	errorResponse(w, code, err.Error())
}
