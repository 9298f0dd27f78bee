package contacts

import (
	"context"
	"errors"
)

var (
	ErrContactNotFound = errors.New("contact not found")
)

type Contact struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	FavoriteColor string `json:"favoriteColor"`
	Birthday      string `json:"birthday"`
}

// ContactInput holds the writable attributes of a contact. Every field is
// required on both create and update.
type ContactInput struct {
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName" validate:"required"`
	Email         string `json:"email" validate:"required"`
	FavoriteColor string `json:"favoriteColor" validate:"required"`
	Birthday      string `json:"birthday" validate:"required"`
}

type ContactService interface {
	List(ctx context.Context) ([]Contact, error)
	GetByID(ctx context.Context, id string) (Contact, error)
	Create(ctx context.Context, in ContactInput) (string, error)
	Update(ctx context.Context, id string, in ContactInput) error
	Delete(ctx context.Context, id string) error
}
