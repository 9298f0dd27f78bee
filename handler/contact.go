package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	contacts "github.com/phbpx/contacts-api"
)

type ContactHandler struct {
	service contacts.ContactService
}

func NewContactHandler(service contacts.ContactService) *ContactHandler {
	return &ContactHandler{
		service: service,
	}
}

// List returns every contact, or the single contact named by the id query
// parameter. An unknown id yields 200 with a null body. The id is handed to
// storage as is, so a malformed one surfaces as a storage error.
func (ch ContactHandler) List(rw http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	if id := r.URL.Query().Get("id"); id != "" {
		contact, err := ch.service.GetByID(ctx, id)
		switch {
		case errors.Is(err, contacts.ErrContactNotFound):
			respond(ctx, rw, http.StatusOK, (*contacts.Contact)(nil))
			return nil
		case err != nil:
			return err
		}

		respond(ctx, rw, http.StatusOK, contact)
		return nil
	}

	list, err := ch.service.List(ctx)
	if err != nil {
		return err
	}
	if list == nil {
		list = []contacts.Contact{}
	}

	respond(ctx, rw, http.StatusOK, list)
	return nil
}

type createResponse struct {
	ID string `json:"id"`
}

func (ch ContactHandler) Create(rw http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	in, err := decodeContact(r)
	if err != nil {
		return err
	}

	id, err := ch.service.Create(ctx, in)
	if err != nil {
		return err
	}

	respond(ctx, rw, http.StatusCreated, createResponse{ID: id})
	return nil
}

func (ch ContactHandler) Update(rw http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	in, err := decodeContact(r)
	if err != nil {
		return err
	}

	if err := ch.service.Update(ctx, id, in); err != nil {
		return err
	}

	respond(ctx, rw, http.StatusNoContent, nil)
	return nil
}

func (ch ContactHandler) Delete(rw http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	if err := ch.service.Delete(ctx, id); err != nil {
		return err
	}

	respond(ctx, rw, http.StatusNoContent, nil)
	return nil
}

// parseID returns the canonical form of a storage identifier.
func parseID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", badRequest("Invalid id.", err)
	}
	return id.String(), nil
}
