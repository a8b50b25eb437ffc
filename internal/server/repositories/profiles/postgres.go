package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/invaders/internal/common"
	"github.com/dmitrijs2005/invaders/internal/dbx"
	"github.com/dmitrijs2005/invaders/internal/models"
)

const profileColumns = `id, credential_id, name, initials, color, avatar_url, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	p := &models.Profile{}
	var avatar sql.NullString
	if err := row.Scan(&p.ID, &p.CredentialID, &p.Name, &p.Initials, &p.Color, &avatar, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if avatar.Valid {
		p.AvatarURL = &avatar.String
	}
	return p, nil
}

// ListByCredential returns the credential's profiles ordered by name.
func (r *PostgresRepository) ListByCredential(ctx context.Context, credentialID string) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles
		 WHERE credential_id = $1
		 ORDER BY name
		 `

	rows, err := r.db.QueryContext(ctx, query, credentialID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
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

func (r *PostgresRepository) Get(ctx context.Context, credentialID, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles
		 WHERE id = $1 AND credential_id = $2
		 `

	return r.one(r.db.QueryRowContext(ctx, query, id, credentialID))
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	query :=
		`INSERT INTO profiles (credential_id, name, initials, color)
		 VALUES ($1, $2, $3, $4)
		 RETURNING ` + profileColumns + `
		 `

	row := r.db.QueryRowContext(ctx, query, p.CredentialID, p.Name, p.Initials, p.Color)
	created, err := scanProfile(row)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

// Update replaces color and avatar URL and bumps updated_at.
func (r *PostgresRepository) Update(ctx context.Context, credentialID, id, color string, avatarURL *string) (*models.Profile, error) {
	query :=
		`UPDATE profiles SET color = $3, avatar_url = $4, updated_at = now()
		 WHERE id = $1 AND credential_id = $2
		 RETURNING ` + profileColumns + `
		 `

	var avatar sql.NullString
	if avatarURL != nil {
		avatar = sql.NullString{String: *avatarURL, Valid: true}
	}

	return r.one(r.db.QueryRowContext(ctx, query, id, credentialID, color, avatar))
}

func (r *PostgresRepository) Delete(ctx context.Context, credentialID, id string) error {
	query :=
		`DELETE FROM profiles
		 WHERE id = $1 AND credential_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, credentialID)
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

func (r *PostgresRepository) one(row *sql.Row) (*models.Profile, error) {
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}
