package pointcache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/invaders/internal/dbx"
	"github.com/dmitrijs2005/invaders/internal/models"
)

const upsertQuery = `
	INSERT INTO points (id, name, address, latitude, longitude, points, status, destroyed, description, profile_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		address = excluded.address,
		latitude = excluded.latitude,
		longitude = excluded.longitude,
		points = excluded.points,
		status = excluded.status,
		destroyed = excluded.destroyed,
		description = excluded.description,
		profile_id = excluded.profile_id,
		created_at = excluded.created_at
`

const selectColumns = `id, name, address, latitude, longitude, points, status, destroyed, description, profile_id, created_at`

// SQLiteRepository implements Repository on the client's SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Replace(ctx context.Context, filter models.PointFilter, list []models.Point) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if filter.Status == "" {
			_, err = tx.ExecContext(ctx, `DELETE FROM points`)
		} else {
			_, err = tx.ExecContext(ctx, `DELETE FROM points WHERE status = ?`, filter.Status)
		}
		if err != nil {
			return err
		}

		for _, p := range list {
			if err := upsert(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace cached points: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, filter models.PointFilter) ([]models.Point, error) {
	query := `SELECT ` + selectColumns + ` FROM points`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select cached points: %w", err)
	}
	defer rows.Close()

	var result []models.Point
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, p models.Point) error {
	if err := upsert(ctx, r.db, p); err != nil {
		return fmt.Errorf("failed to upsert cached point: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM points WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete cached point: %w", err)
	}
	return nil
}

func upsert(ctx context.Context, db dbx.DBTX, p models.Point) error {
	var profileID sql.NullString
	if p.ProfileID != nil {
		profileID = sql.NullString{String: *p.ProfileID, Valid: true}
	}
	_, err := db.ExecContext(ctx, upsertQuery,
		p.ID, p.Name, p.Address, p.Latitude, p.Longitude, p.Points,
		string(p.Status), p.Destroyed, p.Description, profileID, p.CreatedAt.UnixMilli())
	return err
}

func scanPoint(rows *sql.Rows) (models.Point, error) {
	var (
		p         models.Point
		status    string
		profileID sql.NullString
		createdAt int64
	)
	err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.Latitude, &p.Longitude, &p.Points,
		&status, &p.Destroyed, &p.Description, &profileID, &createdAt)
	if err != nil {
		return models.Point{}, err
	}
	p.Status = models.PointStatus(status)
	if profileID.Valid {
		p.ProfileID = &profileID.String
	}
	p.CreatedAt = time.UnixMilli(createdAt).UTC()
	return p, nil
}
