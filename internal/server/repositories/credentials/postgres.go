// Package credentials stores family accounts in PostgreSQL.
package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/invaders/internal/common"
	"github.com/dmitrijs2005/invaders/internal/dbx"
	"github.com/dmitrijs2005/invaders/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts c and fills in its id and creation time. A taken username
// hash yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	query :=
		`INSERT INTO credentials (username_hash, password_hash, family_name)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		c.UsernameHash, c.PasswordHash, c.FamilyName).Scan(&c.ID, &c.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) FindByHashes(ctx context.Context, usernameHash, passwordHash string) (*models.Credential, error) {
	query :=
		`SELECT id, username_hash, password_hash, family_name, created_at FROM credentials
		 WHERE username_hash = $1 AND password_hash = $2
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, usernameHash, passwordHash))
}

func (r *PostgresRepository) FindByUsernameHash(ctx context.Context, usernameHash string) (*models.Credential, error) {
	query :=
		`SELECT id, username_hash, password_hash, family_name, created_at FROM credentials
		 WHERE username_hash = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, usernameHash))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Credential, error) {
	c := &models.Credential{}
	err := row.Scan(&c.ID, &c.UsernameHash, &c.PasswordHash, &c.FamilyName, &c.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	query :=
		`UPDATE credentials SET password_hash = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
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
