package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/butecodosdevs/buteco-core/internal/challenge/entity"
	"github.com/butecodosdevs/buteco-core/pkg/database"
)

var (
	ErrNotFound = errors.New("challenge not found")
	// ErrActiveExists means the two users already have an ACTIVE challenge.
	ErrActiveExists = errors.New("active challenge already exists")
	// ErrNoTransition means the conditional update matched no row.
	ErrNoTransition = errors.New("challenge not in expected state")
)

const columns = `id, challenger_id, challenged_id, channel_id, status,
  challenger_score, challenged_score, description, created_at, updated_at, completed_at`

type ChallengeRepo struct {
	db *sqlx.DB
}

func NewChallengeRepo(db *sqlx.DB) *ChallengeRepo { return &ChallengeRepo{db: db} }

// EnsureTable creates the challenge table and its indexes when missing.
// uq_challenge_active_pair allows one ACTIVE row per unordered user pair.
func (r *ChallengeRepo) EnsureTable(ctx context.Context) error {
	var tbl sql.NullString
	if err := r.db.QueryRowContext(ctx, "SELECT to_regclass('challenge')::text").Scan(&tbl); err != nil {
		return err
	}
	if !tbl.Valid {
		const ddl = `
CREATE TABLE challenge (
  id BIGSERIAL PRIMARY KEY,
  challenger_id VARCHAR NOT NULL,
  challenged_id VARCHAR NOT NULL,
  channel_id VARCHAR NOT NULL,
  status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
  challenger_score INT NOT NULL DEFAULT 0,
  challenged_score INT NOT NULL DEFAULT 0,
  description VARCHAR(500),
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  completed_at TIMESTAMPTZ,
  CHECK (challenger_id <> challenged_id)
)`
		if _, err := r.db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}

	indexes := []struct{ name, ddl string }{
		{"idx_challenge_challenger", `CREATE INDEX idx_challenge_challenger ON challenge (challenger_id, status)`},
		{"idx_challenge_challenged", `CREATE INDEX idx_challenge_challenged ON challenge (challenged_id, status)`},
		{"idx_challenge_channel", `CREATE INDEX idx_challenge_channel ON challenge (channel_id, status)`},
		{"uq_challenge_active_pair", `CREATE UNIQUE INDEX uq_challenge_active_pair
  ON challenge (LEAST(challenger_id, challenged_id), GREATEST(challenger_id, challenged_id))
  WHERE status = 'ACTIVE'`},
	}
	for _, idx := range indexes {
		var name sql.NullString
		if err := r.db.QueryRowContext(ctx, "SELECT to_regclass($1::text)::text", idx.name).Scan(&name); err != nil {
			return err
		}
		if name.Valid {
			continue
		}
		if _, err := r.db.ExecContext(ctx, idx.ddl); err != nil {
			return err
		}
	}
	return nil
}

// Create inserts c as PENDING unless its users already share an ACTIVE challenge,
// in which case ErrActiveExists is returned. c is refreshed from the stored row.
func (r *ChallengeRepo) Create(ctx context.Context, c *entity.Challenge) error {
	const q = `
INSERT INTO challenge (challenger_id, challenged_id, channel_id, status, description)
SELECT $1::varchar, $2::varchar, $3::varchar, 'PENDING', $4::varchar
WHERE NOT EXISTS (
  SELECT 1 FROM challenge
  WHERE status = 'ACTIVE'
    AND LEAST(challenger_id, challenged_id) = LEAST($1::varchar, $2::varchar)
    AND GREATEST(challenger_id, challenged_id) = GREATEST($1::varchar, $2::varchar)
)
RETURNING ` + columns
	err := r.db.GetContext(ctx, c, q, c.ChallengerID, c.ChallengedID, c.ChannelID, c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrActiveExists
	}
	return err
}

// Get returns the challenge with the given id or ErrNotFound.
func (r *ChallengeRepo) Get(ctx context.Context, id int64) (*entity.Challenge, error) {
	var c entity.Challenge
	if err := r.db.GetContext(ctx, &c, `SELECT `+columns+` FROM challenge WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Transition moves a challenge from one status to another in one statement.
// A row not in status from yields ErrNoTransition. Entering ACTIVE while the
// pair already has an active challenge yields ErrActiveExists.
func (r *ChallengeRepo) Transition(ctx context.Context, id int64, from, to entity.Status) (*entity.Challenge, error) {
	const q = `
UPDATE challenge
SET status = $3::varchar,
    updated_at = NOW(),
    completed_at = CASE WHEN $3::varchar = 'COMPLETED' THEN NOW() ELSE completed_at END
WHERE id = $1 AND status = $2::varchar
RETURNING ` + columns
	var c entity.Challenge
	if err := r.db.GetContext(ctx, &c, q, id, string(from), string(to)); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNoTransition
		case database.IsUniqueViolation(err):
			return nil, ErrActiveExists
		}
		return nil, err
	}
	return &c, nil
}

// IncrementScore adds one point to the side userID plays on an ACTIVE challenge.
// ErrNoTransition covers an inactive challenge and a user outside it.
func (r *ChallengeRepo) IncrementScore(ctx context.Context, id int64, userID string) (*entity.Challenge, error) {
	const q = `
UPDATE challenge
SET challenger_score = challenger_score + CASE WHEN challenger_id = $2::varchar THEN 1 ELSE 0 END,
    challenged_score = challenged_score + CASE WHEN challenged_id = $2::varchar THEN 1 ELSE 0 END,
    updated_at = NOW()
WHERE id = $1 AND status = 'ACTIVE' AND $2::varchar IN (challenger_id, challenged_id)
RETURNING ` + columns
	var c entity.Challenge
	if err := r.db.GetContext(ctx, &c, q, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoTransition
		}
		return nil, err
	}
	return &c, nil
}

// ListByUser returns challenges where userID plays either side, newest first.
// An empty status matches every status.
func (r *ChallengeRepo) ListByUser(ctx context.Context, userID string, status entity.Status) ([]entity.Challenge, error) {
	const q = `
SELECT ` + columns + ` FROM challenge
WHERE (challenger_id = $1::varchar OR challenged_id = $1::varchar)
  AND ($2::varchar = '' OR status = $2::varchar)
ORDER BY created_at DESC, id DESC`
	out := []entity.Challenge{}
	if err := r.db.SelectContext(ctx, &out, q, userID, string(status)); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByChannel returns the channel's challenges in the given status, newest first.
func (r *ChallengeRepo) ListByChannel(ctx context.Context, channelID string, status entity.Status) ([]entity.Challenge, error) {
	const q = `
SELECT ` + columns + ` FROM challenge
WHERE channel_id = $1::varchar AND status = $2::varchar
ORDER BY created_at DESC, id DESC`
	out := []entity.Challenge{}
	if err := r.db.SelectContext(ctx, &out, q, channelID, string(status)); err != nil {
		return nil, err
	}
	return out, nil
}
