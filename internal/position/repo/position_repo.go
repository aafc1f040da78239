package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/butecodosdevs/buteco-core/internal/position/entity"
)

// ErrNotFound is returned when the user has no position.
var ErrNotFound = errors.New("political position not found")

// PositionRepo provides data access for the political_position table using sqlx.
type PositionRepo struct {
	db *sqlx.DB
}

func NewPositionRepo(db *sqlx.DB) *PositionRepo { return &PositionRepo{db: db} }

// EnsureTable creates political_position and its one-row-per-user index.
// On a legacy table holding duplicate rows per user the index creation fails
// and the error is returned untouched.
func (r *PositionRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS political_position (
  id UUID PRIMARY KEY,
  "userId" UUID NOT NULL REFERENCES "user"(id),
  "positionX" NUMERIC(10,2) NOT NULL CHECK ("positionX" BETWEEN -10 AND 10),
  "positionY" NUMERIC(10,2) NOT NULL CHECK ("positionY" BETWEEN -10 AND 10),
  "createdAt" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  "updatedAt" TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_political_position_user ON political_position("userId");
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Upsert writes p's coordinates for p.UserID in one statement: a new row gets
// p.ID and fresh timestamps, an existing row keeps its id and createdAt.
// p is refreshed from the stored row. inserted reports which branch ran.
func (r *PositionRepo) Upsert(ctx context.Context, p *entity.Position) (inserted bool, err error) {
	// xmax is 0 only for a tuple this statement inserted.
	const q = `
INSERT INTO political_position (id, "userId", "positionX", "positionY", "createdAt", "updatedAt")
VALUES ($1, $2, $3, $4, NOW(), NOW())
ON CONFLICT ("userId") DO UPDATE
  SET "positionX" = EXCLUDED."positionX",
      "positionY" = EXCLUDED."positionY",
      "updatedAt" = NOW()
RETURNING id, "userId",
  "positionX"::float8 AS "positionX", "positionY"::float8 AS "positionY",
  "createdAt", "updatedAt", (xmax = 0) AS inserted`
	var row struct {
		entity.Position
		Inserted bool `db:"inserted"`
	}
	if err := r.db.GetContext(ctx, &row, q, p.ID, p.UserID, p.X, p.Y); err != nil {
		return false, err
	}
	p.ID = row.ID
	p.X = row.X
	p.Y = row.Y
	p.CreatedAt = row.CreatedAt
	p.UpdatedAt = row.UpdatedAt
	return row.Inserted, nil
}

// GetByDiscordID returns the position owned by the user with the given external id.
func (r *PositionRepo) GetByDiscordID(ctx context.Context, discordID string) (*entity.Position, error) {
	const q = `
SELECT pp.id, pp."userId",
  pp."positionX"::float8 AS "positionX", pp."positionY"::float8 AS "positionY",
  pp."createdAt", pp."updatedAt", u."discordId", u.name
FROM political_position pp
JOIN "user" u ON pp."userId" = u.id
WHERE u."discordId" = $1`
	var p entity.Position
	if err := r.db.GetContext(ctx, &p, q, discordID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns every position ordered by display name.
func (r *PositionRepo) List(ctx context.Context) ([]entity.GraphPoint, error) {
	const q = `
SELECT u."discordId" AS usuario, u.name,
  pp."positionX"::float8 AS x, pp."positionY"::float8 AS y
FROM political_position pp
JOIN "user" u ON pp."userId" = u.id
ORDER BY u.name ASC, u."discordId" ASC`
	points := []entity.GraphPoint{}
	if err := r.db.SelectContext(ctx, &points, q); err != nil {
		return nil, err
	}
	return points, nil
}
