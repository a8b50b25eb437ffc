// Package points stores map points. Names are unique after trimming and
// case folding; the schema enforces it.
package points

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/invaders/internal/common"
	"github.com/dmitrijs2005/invaders/internal/dbx"
	"github.com/dmitrijs2005/invaders/internal/models"
)

const pointColumns = `id, name, address, latitude, longitude, points, status, destroyed, description, profile_id, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoint(row rowScanner) (*models.Point, error) {
	p := &models.Point{}
	var status string
	var profileID sql.NullString
	err := row.Scan(&p.ID, &p.Name, &p.Address, &p.Latitude, &p.Longitude, &p.Points,
		&status, &p.Destroyed, &p.Description, &profileID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = models.PointStatus(status)
	if profileID.Valid {
		p.ProfileID = &profileID.String
	}
	return p, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Point, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Point{}
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// List returns points newest first, optionally narrowed by status.
func (r *PostgresRepository) List(ctx context.Context, filter models.PointFilter) ([]*models.Point, error) {
	if filter.Status == "" {
		return r.query(ctx, `SELECT `+pointColumns+` FROM points
		 ORDER BY created_at DESC
		 `)
	}

	return r.query(ctx, `SELECT `+pointColumns+` FROM points
		 WHERE status = $1
		 ORDER BY created_at DESC
		 `, string(filter.Status))
}

// SearchByPrefix matches names starting with prefix, case-insensitively.
// LIKE metacharacters in prefix are matched literally.
func (r *PostgresRepository) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]*models.Point, error) {
	if limit <= 0 || limit > SearchLimit {
		limit = SearchLimit
	}

	query := `SELECT ` + pointColumns + ` FROM points
		 WHERE name ILIKE $1 ESCAPE '\'
		 ORDER BY name
		 LIMIT $2
		 `

	return r.query(ctx, query, escapeLike(prefix)+"%", limit)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Point, error) {
	query := `SELECT ` + pointColumns + ` FROM points
		 WHERE id = $1
		 `

	return r.one(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Create(ctx context.Context, in models.PointInput) (*models.Point, error) {
	query :=
		`INSERT INTO points (name, address, latitude, longitude, points, status, destroyed, description, profile_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING ` + pointColumns + `
		 `

	return r.one(r.db.QueryRowContext(ctx, query, inputArgs(in)...))
}

func (r *PostgresRepository) Update(ctx context.Context, id string, in models.PointInput) (*models.Point, error) {
	query :=
		`UPDATE points SET name = $2, address = $3, latitude = $4, longitude = $5, points = $6,
		 status = $7, destroyed = $8, description = $9, profile_id = $10
		 WHERE id = $1
		 RETURNING ` + pointColumns + `
		 `

	args := append([]any{id}, inputArgs(in)...)
	return r.one(r.db.QueryRowContext(ctx, query, args...))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM points WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func inputArgs(in models.PointInput) []any {
	var profileID sql.NullString
	if in.ProfileID != nil {
		profileID = sql.NullString{String: *in.ProfileID, Valid: true}
	}
	return []any{
		strings.TrimSpace(in.Name), in.Address, in.Latitude, in.Longitude, in.Points,
		string(in.Status), in.Destroyed, in.Description, profileID,
	}
}

func (r *PostgresRepository) one(row *sql.Row) (*models.Point, error) {
	p, err := scanPoint(row)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrorNotFound
		case dbx.IsUniqueViolation(err):
			return nil, common.ErrorAlreadyExists
		case dbx.IsForeignKeyViolation(err):
			return nil, common.ErrorValidation
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}
