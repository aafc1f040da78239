package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/butecodosdevs/buteco-core/internal/farm/entity"
	"github.com/butecodosdevs/buteco-core/pkg/database"
)

// DefaultSchema holds the farm tables when no schema is configured.
const DefaultSchema = "farm"

var (
	ErrNotFound  = errors.New("farm not found")
	ErrNameTaken = errors.New("farm name already taken")
)

// FarmRepo stores farms and their items inside one Postgres schema.
type FarmRepo struct {
	db     *sqlx.DB
	schema string
}

func NewFarmRepo(db *sqlx.DB, schema string) *FarmRepo {
	if schema == "" {
		schema = DefaultSchema
	}
	return &FarmRepo{db: db, schema: schema}
}

// t returns the schema-qualified, quoted name of a table or type.
func (r *FarmRepo) t(name string) string {
	return pq.QuoteIdentifier(r.schema) + "." + pq.QuoteIdentifier(name)
}

// EnsureTable creates the schema, the item type enum and the three tables.
func (r *FarmRepo) EnsureTable(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(r.schema)); err != nil {
		return err
	}
	var typ sql.NullString
	if err := r.db.QueryRowContext(ctx, "SELECT to_regtype($1::text)::text", r.t("farm_item_types")).Scan(&typ); err != nil {
		return err
	}

	var stmts []string
	if !typ.Valid {
		stmts = append(stmts, fmt.Sprintf(`CREATE TYPE %s AS ENUM ('ANIMAL', 'LAND', 'UTILITY')`, r.t("farm_item_types")))
	}
	stmts = append(stmts,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id SERIAL PRIMARY KEY,
  type %s NOT NULL,
  amount INTEGER NOT NULL
)`, r.t("farm_items"), r.t("farm_item_types")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id SERIAL PRIMARY KEY,
  name VARCHAR NOT NULL UNIQUE
)`, r.t("farms")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  farm_id INTEGER NOT NULL REFERENCES %s(id),
  item_id INTEGER NOT NULL REFERENCES %s(id)
)`, r.t("farm_items_on_farms"), r.t("farms"), r.t("farm_items")),
	)
	for _, s := range stmts {
		if _, err := r.db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Create inserts a farm with a unique name.
func (r *FarmRepo) Create(ctx context.Context, name string) (*entity.Farm, error) {
	f := entity.Farm{Items: []entity.Item{}}
	q := fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1) RETURNING id, name`, r.t("farms"))
	if err := r.db.GetContext(ctx, &f, q, name); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	return &f, nil
}

// List returns every farm without items, ordered by name.
func (r *FarmRepo) List(ctx context.Context) ([]entity.FarmSummary, error) {
	farms := []entity.FarmSummary{}
	q := fmt.Sprintf(`SELECT id, name FROM %s ORDER BY name ASC`, r.t("farms"))
	if err := r.db.SelectContext(ctx, &farms, q); err != nil {
		return nil, err
	}
	return farms, nil
}

// Get returns one farm with its items.
func (r *FarmRepo) Get(ctx context.Context, id int64) (*entity.Farm, error) {
	var f entity.Farm
	q := fmt.Sprintf(`SELECT id, name FROM %s WHERE id = $1`, r.t("farms"))
	if err := r.db.GetContext(ctx, &f, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	f.Items = []entity.Item{}
	q = fmt.Sprintf(`
SELECT i.id, i.type::text AS type, i.amount
FROM %s fi
JOIN %s i ON i.id = fi.item_id
WHERE fi.farm_id = $1
ORDER BY i.id`, r.t("farm_items_on_farms"), r.t("farm_items"))
	if err := r.db.SelectContext(ctx, &f.Items, q, id); err != nil {
		return nil, err
	}
	return &f, nil
}

// AddItem creates an item and links it to the farm in one transaction.
func (r *FarmRepo) AddItem(ctx context.Context, farmID int64, it entity.Item) (*entity.Item, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var locked int64
	q := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR SHARE`, r.t("farms"))
	if err := tx.GetContext(ctx, &locked, q, farmID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	out := entity.Item{}
	q = fmt.Sprintf(`INSERT INTO %s (type, amount) VALUES ($1::text::%s, $2)
RETURNING id, type::text AS type, amount`, r.t("farm_items"), r.t("farm_item_types"))
	if err := tx.GetContext(ctx, &out, q, string(it.Type), it.Amount); err != nil {
		return nil, err
	}
	q = fmt.Sprintf(`INSERT INTO %s (farm_id, item_id) VALUES ($1, $2)`, r.t("farm_items_on_farms"))
	if _, err := tx.ExecContext(ctx, q, farmID, out.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}
