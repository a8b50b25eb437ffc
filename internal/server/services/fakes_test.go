package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/invaders/internal/dbx"
	"github.com/dmitrijs2005/invaders/internal/models"
	"github.com/dmitrijs2005/invaders/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/invaders/internal/server/repositories/points"
	"github.com/dmitrijs2005/invaders/internal/server/repositories/profiles"
)

type fakeCredentialsRepo struct {
	createIn  *models.Credential
	createOut *models.Credential
	createErr error

	findHashesUser string
	findHashesPass string
	findHashesOut  *models.Credential
	findHashesErr  error

	findUserOut *models.Credential
	findUserErr error

	updateID   string
	updateHash string
	updateErr  error
}

func (f *fakeCredentialsRepo) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	f.createIn = c
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeCredentialsRepo) FindByHashes(ctx context.Context, usernameHash, passwordHash string) (*models.Credential, error) {
	f.findHashesUser, f.findHashesPass = usernameHash, passwordHash
	if f.findHashesErr != nil {
		return nil, f.findHashesErr
	}
	return f.findHashesOut, nil
}

func (f *fakeCredentialsRepo) FindByUsernameHash(ctx context.Context, usernameHash string) (*models.Credential, error) {
	if f.findUserErr != nil {
		return nil, f.findUserErr
	}
	return f.findUserOut, nil
}

func (f *fakeCredentialsRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	f.updateID, f.updateHash = id, passwordHash
	return f.updateErr
}

type fakeProfilesRepo struct {
	listOut []*models.Profile
	listErr error

	getOut *models.Profile
	getErr error

	createIn  *models.Profile
	createErr error

	updateColor  string
	updateAvatar *string
	updateOut    *models.Profile
	updateErr    error

	deleteErr error
}

func (f *fakeProfilesRepo) ListByCredential(ctx context.Context, credentialID string) ([]*models.Profile, error) {
	return f.listOut, f.listErr
}

func (f *fakeProfilesRepo) Get(ctx context.Context, credentialID, id string) (*models.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeProfilesRepo) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	f.createIn = p
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *p
	out.ID = "p-new"
	return &out, nil
}

func (f *fakeProfilesRepo) Update(ctx context.Context, credentialID, id, color string, avatarURL *string) (*models.Profile, error) {
	f.updateColor, f.updateAvatar = color, avatarURL
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateOut, nil
}

func (f *fakeProfilesRepo) Delete(ctx context.Context, credentialID, id string) error {
	return f.deleteErr
}

type fakePointsRepo struct {
	listFilter models.PointFilter
	listOut    []*models.Point
	listErr    error

	searchPrefix string
	searchLimit  int
	searchOut    []*models.Point
	searchErr    error

	writeIn  models.PointInput
	writeOut *models.Point
	writeErr error

	deleteErr error
}

func (f *fakePointsRepo) List(ctx context.Context, filter models.PointFilter) ([]*models.Point, error) {
	f.listFilter = filter
	return f.listOut, f.listErr
}

func (f *fakePointsRepo) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]*models.Point, error) {
	f.searchPrefix, f.searchLimit = prefix, limit
	return f.searchOut, f.searchErr
}

func (f *fakePointsRepo) Get(ctx context.Context, id string) (*models.Point, error) {
	return f.writeOut, f.writeErr
}

func (f *fakePointsRepo) Create(ctx context.Context, in models.PointInput) (*models.Point, error) {
	f.writeIn = in
	return f.writeOut, f.writeErr
}

func (f *fakePointsRepo) Update(ctx context.Context, id string, in models.PointInput) (*models.Point, error) {
	f.writeIn = in
	return f.writeOut, f.writeErr
}

func (f *fakePointsRepo) Delete(ctx context.Context, id string) error {
	return f.deleteErr
}

type fakeRepoManager struct {
	c  *fakeCredentialsRepo
	p  *fakeProfilesRepo
	pt *fakePointsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error       { return nil }
func (m *fakeRepoManager) Credentials(db dbx.DBTX) credentials.Repository { return m.c }
func (m *fakeRepoManager) Profiles(db dbx.DBTX) profiles.Repository       { return m.p }
func (m *fakeRepoManager) Points(db dbx.DBTX) points.Repository           { return m.pt }

type fakeAvatarStore struct {
	profileID string
	ext       string
	size      int64
	out       *models.AvatarUploadResponse
	err       error
}

func (f *fakeAvatarStore) PresignAvatarUpload(ctx context.Context, profileID, contentType, ext string, size int64, now time.Time) (*models.AvatarUploadResponse, error) {
	f.profileID, f.ext, f.size = profileID, ext, size
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}
