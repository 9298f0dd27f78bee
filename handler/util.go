package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	contacts "github.com/phbpx/contacts-api"
)

var validate = validator.New()

// Error is a failure the client caused. Status is always a 4xx code and
// Message is safe to send back as is.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func badRequest(msg string, err error) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg, Err: err}
}

// handlerFunc is an http.HandlerFunc that reports failures instead of
// writing them.
type handlerFunc func(rw http.ResponseWriter, r *http.Request) error

// handle is the single place where handler errors become HTTP responses.
func handle(log *otelzap.SugaredLogger, fn handlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		err := fn(rw, r)
		if err == nil {
			return
		}

		ctx := r.Context()
		status, msg := statusOf(err)
		if status >= http.StatusInternalServerError {
			log.Ctx(ctx).Errorw("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err.Error())
			respondErr(ctx, rw, status, rootCause(err).Error())
			return
		}

		log.Ctx(ctx).Warnw("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err.Error())
		respondErr(ctx, rw, status, msg)
	}
}

func statusOf(err error) (int, string) {
	var herr *Error
	switch {
	case errors.As(err, &herr):
		return herr.Status, herr.Message
	case errors.Is(err, contacts.ErrContactNotFound):
		return http.StatusNotFound, "Contact not found."
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// rootCause returns the innermost error of a wrap chain: the driver's own
// message rather than the context added on the way up.
func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func decode(r *http.Request, into interface{}) error {
	rawJson, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(rawJson) == 0 {
		return nil
	}
	return json.Unmarshal(rawJson, into)
}

// decodeContact reads and validates the contact payload of a create or
// update request.
func decodeContact(r *http.Request) (contacts.ContactInput, error) {
	var in contacts.ContactInput
	if err := decode(r, &in); err != nil {
		return in, badRequest("Invalid request body.", err)
	}
	if err := validate.Struct(in); err != nil {
		return in, badRequest("All fields are required.", err)
	}
	return in, nil
}

func respond(ctx context.Context, rw http.ResponseWriter, status int, data interface{}) {
	ctx, span := otel.GetTracerProvider().Tracer("").Start(ctx, "handler.respond")
	span.SetAttributes(attribute.Int("http.status", status))
	defer span.End()

	if status == http.StatusNoContent || data == nil {
		rw.WriteHeader(status)
		return
	}

	rawJson, err := json.Marshal(data)
	if err != nil {
		panic("respond-json-marshal:" + err.Error())
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	rw.Write(rawJson)
}

// respondErr writes the error body. Client errors carry a "message", server
// errors carry the raw "error".
func respondErr(ctx context.Context, rw http.ResponseWriter, status int, msg string) {
	key := "message"
	if status >= http.StatusInternalServerError {
		key = "error"
	}
	respond(ctx, rw, status, map[string]string{
		"code": http.StatusText(status),
		key:    msg,
	})
}
