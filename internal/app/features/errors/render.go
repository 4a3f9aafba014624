// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/dalemusser/coursehub/internal/app/system/inputval"
	"github.com/dalemusser/coursehub/internal/app/system/limits"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"go.uber.org/zap"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
	Back   string            `json:"back,omitempty"`
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads a JSON body into v. Failures are errs.ErrInvalid.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return errs.E("decode", errs.ErrInvalid, "request body is empty")
		}
		return &errs.Error{Op: "decode", Kind: errs.ErrInvalid, Message: "request body is not valid JSON", Err: err}
	}
	return nil
}

// Status maps an error kind to its HTTP status.
func Status(err error) int {
	switch errs.Kind(err) {
	case errs.ErrNotFound:
		return http.StatusNotFound
	case errs.ErrForbidden:
		return http.StatusForbidden
	case errs.ErrConflict:
		return http.StatusConflict
	case errs.ErrInvalid:
		return http.StatusBadRequest
	case errs.ErrUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ErrorLogger writes error responses and logs the ones that are our fault.
type ErrorLogger struct {
	log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// Write answers with the status for err's kind. 5xx responses are logged
// with the cause and never expose it.
func (e *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := Status(err)
	if status >= 500 {
		e.LogServerError(w, r, msg, err, "")
		return
	}
	JSON(w, status, errorBody{Error: errs.Message(err), Fields: inputval.Fields(err)})
}

// LogBadRequest logs at debug and answers 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Debug(msg, zap.Error(err), zap.String("path", r.URL.Path))
	if userMsg == "" {
		userMsg = errs.Message(err)
	}
	JSON(w, http.StatusBadRequest, errorBody{Error: userMsg, Fields: inputval.Fields(err)})
}

// LogServerError logs at error and answers 503 for store failures, 500
// otherwise.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Error(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	status := http.StatusInternalServerError
	if errs.Kind(err) == errs.ErrUnavailable {
		status = http.StatusServiceUnavailable
		if userMsg == "" {
			userMsg = "the service is temporarily unavailable, try again"
		}
	}
	if userMsg == "" {
		userMsg = "internal error"
	}
	JSON(w, status, errorBody{Error: userMsg})
}
