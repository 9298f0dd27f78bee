// Package memory implements contacts.ContactService in process memory. It is
// meant for local runs and tests; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	contacts "github.com/phbpx/contacts-api"
)

// ContactService keeps contacts in insertion order.
type ContactService struct {
	mu       sync.Mutex
	index    map[string]int
	contacts []contacts.Contact
}

var _ contacts.ContactService = (*ContactService)(nil)

func NewContactService() *ContactService {
	return &ContactService{index: map[string]int{}}
}

// Seed appends cs to the store. Every ID must be a UUID not already stored;
// on error nothing is added.
func (s *ContactService) Seed(cs ...contacts.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs = slices.Clone(cs)
	seen := make(map[string]bool, len(cs))
	for i := range cs {
		id, err := canonical(cs[i].ID)
		if err != nil {
			return err
		}
		if _, ok := s.index[id]; ok || seen[id] {
			return fmt.Errorf("duplicate contact id %s", id)
		}
		seen[id] = true
		cs[i].ID = id
	}

	for _, c := range cs {
		s.index[c.ID] = len(s.contacts)
		s.contacts = append(s.contacts, c)
	}
	return nil
}

// canonical mirrors the database's uuid column: malformed ids are a storage
// error, well-formed ones compare case-insensitively.
func canonical(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid input syntax for type uuid: %q", id)
	}
	return u.String(), nil
}

func (s *ContactService) List(_ context.Context) ([]contacts.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.contacts), nil
}

func (s *ContactService) GetByID(_ context.Context, id string) (contacts.Contact, error) {
	id, err := canonical(id)
	if err != nil {
		return contacts.Contact{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return contacts.Contact{}, contacts.ErrContactNotFound
	}
	return s.contacts[i], nil
}

func (s *ContactService) Create(_ context.Context, in contacts.ContactInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	for _, taken := s.index[id]; taken; _, taken = s.index[id] {
		id = uuid.NewString()
	}

	s.index[id] = len(s.contacts)
	s.contacts = append(s.contacts, contacts.Contact{
		ID:            id,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		FavoriteColor: in.FavoriteColor,
		Birthday:      in.Birthday,
	})
	return id, nil
}

func (s *ContactService) Update(_ context.Context, id string, in contacts.ContactInput) error {
	id, err := canonical(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return contacts.ErrContactNotFound
	}
	s.contacts[i] = contacts.Contact{
		ID:            id,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		FavoriteColor: in.FavoriteColor,
		Birthday:      in.Birthday,
	}
	return nil
}

func (s *ContactService) Delete(_ context.Context, id string) error {
	id, err := canonical(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return contacts.ErrContactNotFound
	}
	delete(s.index, id)
	s.contacts = slices.Delete(s.contacts, i, i+1)
	for j := i; j < len(s.contacts); j++ {
		s.index[s.contacts[j].ID] = j
	}
	return nil
}
