package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	contacts "github.com/phbpx/contacts-api"
)

// lib/pq errorCodeNames
// https://github.com/lib/pq/blob/master/error.go#L178
const invalidTextRepresentation = "22P02"

type ContactService struct {
	db *sql.DB
}

func NewContactService(db *sql.DB) contacts.ContactService {
	return &ContactService{
		db: db,
	}
}

func (cs ContactService) List(ctx context.Context) ([]contacts.Contact, error) {
	query := `
	SELECT
		id,
		first_name,
		last_name,
		email,
		favorite_color,
		birthday
	FROM contacts`

	rows, err := cs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying contacts: %w", err)
	}
	defer rows.Close()

	list := []contacts.Contact{}
	for rows.Next() {
		var c contacts.Contact
		if err := rows.Scan(
			&c.ID,
			&c.FirstName,
			&c.LastName,
			&c.Email,
			&c.FavoriteColor,
			&c.Birthday,
		); err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		list = append(list, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contacts: %w", err)
	}

	return list, nil
}

func (cs ContactService) GetByID(ctx context.Context, id string) (contacts.Contact, error) {
	query := `
	SELECT
		id,
		first_name,
		last_name,
		email,
		favorite_color,
		birthday
	FROM contacts
	WHERE id=$1`

	row := cs.db.QueryRowContext(ctx, query, id)

	contact := contacts.Contact{}
	err := row.Scan(
		&contact.ID,
		&contact.FirstName,
		&contact.LastName,
		&contact.Email,
		&contact.FavoriteColor,
		&contact.Birthday,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return contact, contacts.ErrContactNotFound
		}
		return contact, wrapErr("querying contact", id, err)
	}

	return contact, nil
}

func (cs ContactService) Create(ctx context.Context, in contacts.ContactInput) (string, error) {
	query := `
	INSERT INTO contacts (
		first_name, last_name, email, favorite_color, birthday
	) VALUES (
		$1, $2, $3, $4, $5
	)
	RETURNING id`

	var id string
	err := cs.db.QueryRowContext(ctx, query,
		in.FirstName,
		in.LastName,
		in.Email,
		in.FavoriteColor,
		in.Birthday,
	).Scan(&id)

	if err != nil {
		return "", fmt.Errorf("inserting contact: %w", err)
	}

	return id, nil
}

func (cs ContactService) Update(ctx context.Context, id string, in contacts.ContactInput) error {
	query := `
	UPDATE contacts SET
		first_name=$2,
		last_name=$3,
		email=$4,
		favorite_color=$5,
		birthday=$6
	WHERE id=$1`

	res, err := cs.db.ExecContext(ctx, query,
		id,
		in.FirstName,
		in.LastName,
		in.Email,
		in.FavoriteColor,
		in.Birthday,
	)
	if err != nil {
		return wrapErr("updating contact", id, err)
	}

	return mustAffect(res)
}

func (cs ContactService) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM contacts WHERE id=$1`

	res, err := cs.db.ExecContext(ctx, query, id)
	if err != nil {
		return wrapErr("deleting contact", id, err)
	}

	return mustAffect(res)
}

// mustAffect turns a statement that touched no row into ErrContactNotFound.
func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return contacts.ErrContactNotFound
	}
	return nil
}

// wrapErr adds op to err, and the offending id when the database refused it
// as a uuid.
func wrapErr(op, id string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation {
		return fmt.Errorf("%s: malformed id %q: %w", op, id, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
