package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/invaders/internal/dbx"
	"github.com/dmitrijs2005/invaders/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/invaders/internal/server/repositories/points"
	"github.com/dmitrijs2005/invaders/internal/server/repositories/profiles"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Credentials(db dbx.DBTX) credentials.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Points(db dbx.DBTX) points.Repository
}
