package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contacts "github.com/phbpx/contacts-api"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		wantPath    string
		wantSSLMode string
		wantErr     bool
	}{
		{
			name:        "name replaces path",
			cfg:         Config{URL: "postgres://u:p@localhost:5432/other", Name: "contactsDB", DisableTLS: true},
			wantPath:    "/contactsDB",
			wantSSLMode: "disable",
		},
		{
			name:        "tls required by default",
			cfg:         Config{URL: "postgres://u:p@db.internal", Name: "contactsDB"},
			wantPath:    "/contactsDB",
			wantSSLMode: "require",
		},
		{
			name:        "explicit sslmode kept",
			cfg:         Config{URL: "postgresql://u:p@db.internal/x?sslmode=verify-full", DisableTLS: true},
			wantPath:    "/x",
			wantSSLMode: "verify-full",
		},
		{
			name:    "wrong scheme",
			cfg:     Config{URL: "mongodb://localhost:27017", Name: "contactsDB"},
			wantErr: true,
		},
		{
			name:    "unparsable",
			cfg:     Config{URL: "postgres://%zz", Name: "contactsDB"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dsn, err := DSN(tc.cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			u, err := url.Parse(dsn)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPath, u.Path)
			assert.Equal(t, tc.wantSSLMode, u.Query().Get("sslmode"))
			assert.Equal(t, "utc", u.Query().Get("timezone"))
		})
	}
}

func TestOpenClosesHandleWhenStatsFail(t *testing.T) {
	orig := recordStats
	defer func() { recordStats = orig }()

	var opened *sql.DB
	recordStats = func(db *sql.DB) error {
		opened = db
		return errors.New("stats unavailable")
	}

	db, err := Open(Config{URL: "postgres://u:p@localhost:5432", Name: "contactsDB", DisableTLS: true})
	assert.Nil(t, db)
	require.EqualError(t, err, "stats unavailable")
	require.NotNil(t, opened)
	assert.EqualError(t, opened.Ping(), "sql: database is closed")
}

func TestWrapErr(t *testing.T) {
	badUUID := &pq.Error{Code: invalidTextRepresentation, Message: `invalid input syntax for type uuid: "abc"`}
	err := wrapErr("querying contact", "abc", badUUID)
	assert.EqualError(t, err, `querying contact: malformed id "abc": pq: invalid input syntax for type uuid: "abc"`)
	assert.ErrorIs(t, err, badUUID)

	other := errors.New("connection reset by peer")
	err = wrapErr("deleting contact", "abc", other)
	assert.EqualError(t, err, "deleting contact: connection reset by peer")
	assert.ErrorIs(t, err, other)
}

func TestMigrationsProvideUUIDDefault(t *testing.T) {
	up, err := fs.ReadFile(migrations, "migrations/000001_create_contacts.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "CREATE EXTENSION IF NOT EXISTS pgcrypto;")
	assert.Contains(t, string(up), "DEFAULT gen_random_uuid()")
}

// TestContactService runs against a real database. Set CONTACTS_TEST_DB_URL
// to a postgres connection string to enable it.
func TestContactService(t *testing.T) {
	dbURL := os.Getenv("CONTACTS_TEST_DB_URL")
	if dbURL == "" {
		t.Skip("CONTACTS_TEST_DB_URL not set")
	}

	db, err := Open(Config{URL: dbURL, DisableTLS: true})
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, Migrate(ctx, db))

	svc := NewContactService(db)
	in := contacts.ContactInput{
		FirstName:     "John",
		LastName:      "Doe",
		Email:         "john.doe@test.com",
		FavoriteColor: "Blue",
		Birthday:      "1990-01-01",
	}

	id, err := svc.Create(ctx, in)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, contacts.Contact{
		ID:            id,
		FirstName:     "John",
		LastName:      "Doe",
		Email:         "john.doe@test.com",
		FavoriteColor: "Blue",
		Birthday:      "1990-01-01",
	}, got)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, got)

	in.FavoriteColor = "Red"
	require.NoError(t, svc.Update(ctx, id, in))

	got, err = svc.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Red", got.FavoriteColor)

	_, err = svc.GetByID(ctx, "6971389fc408fafb3e887861")
	require.Error(t, err)
	assert.NotErrorIs(t, err, contacts.ErrContactNotFound)
	assert.Contains(t, err.Error(), "invalid input syntax for type uuid")

	missing := uuid.NewString()
	assert.ErrorIs(t, svc.Update(ctx, missing, in), contacts.ErrContactNotFound)
	_, err = svc.GetByID(ctx, missing)
	assert.ErrorIs(t, err, contacts.ErrContactNotFound)

	require.NoError(t, svc.Delete(ctx, id))
	assert.ErrorIs(t, svc.Delete(ctx, id), contacts.ErrContactNotFound)
}
