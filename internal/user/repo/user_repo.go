package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/butecodosdevs/buteco-core/internal/user/entity"
)

// ErrNotFound is returned when no user has the requested external id.
var ErrNotFound = errors.New("user not found")

// UserRepo provides read access to the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the "user" table if not exists (idempotent).
// Production databases get it from the registration service; this is for
// local development and tests.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS "user" (
  id UUID PRIMARY KEY,
  "discordId" VARCHAR NOT NULL UNIQUE,
  name VARCHAR NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_user_name ON "user"(name);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// GetByDiscordID returns the user with the given external id or ErrNotFound.
func (r *UserRepo) GetByDiscordID(ctx context.Context, discordID string) (*entity.User, error) {
	const q = `SELECT id, "discordId", name FROM "user" WHERE "discordId" = $1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, discordID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
