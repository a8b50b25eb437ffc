// Package services contains server-side business logic. CredentialService
// handles family accounts: sign-up, login, lookup and password reset.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/invaders/internal/common"
	"github.com/dmitrijs2005/invaders/internal/cryptox"
	"github.com/dmitrijs2005/invaders/internal/models"
	"github.com/dmitrijs2005/invaders/internal/server/auth"
	"github.com/dmitrijs2005/invaders/internal/server/config"
	"github.com/dmitrijs2005/invaders/internal/server/repositories/repomanager"
	"github.com/samber/oops"
)

type CredentialService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	jwtSecret       []byte
	pepper          string
	sessionValidity time.Duration
	now             func() time.Time
}

func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *CredentialService {
	return &CredentialService{
		db:              db,
		repomanager:     m,
		jwtSecret:       []byte(cfg.SecretKey),
		pepper:          cfg.PasswordPepper,
		sessionValidity: cfg.SessionValidityDuration,
		now:             time.Now,
	}
}

func validateDigests(digests ...string) error {
	for _, d := range digests {
		if !cryptox.IsDigest(d) {
			return oops.Code("CREDENTIAL_INVALID_DIGEST").Wrap(common.ErrorValidation)
		}
	}
	return nil
}

// Login looks the account up by its exact hash pair and issues an access
// token valid for the session duration.
func (s *CredentialService) Login(ctx context.Context, usernameHash, passwordHash string) (*models.LoginResponse, error) {
	if err := validateDigests(usernameHash, passwordHash); err != nil {
		return nil, err
	}

	repo := s.repomanager.Credentials(s.db)
	c, err := repo.FindByHashes(ctx, usernameHash, cryptox.DerivePasswordDigest(passwordHash, s.pepper))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(common.ErrorUnauthorized)
		}
		return nil, oops.Code("CREDENTIAL_LOOKUP_FAILED").Wrap(err)
	}

	token, expiresAt, err := auth.GenerateToken(c.ID, s.jwtSecret, s.now(), s.sessionValidity)
	if err != nil {
		return nil, oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}

	return &models.LoginResponse{
		CredentialID: c.ID,
		FamilyName:   c.FamilyName,
		AccessToken:  token,
		ExpiresAt:    expiresAt,
	}, nil
}

// Lookup finds an account by username hash alone. It backs the password
// reset flow; the family name it returns is what the user must confirm.
func (s *CredentialService) Lookup(ctx context.Context, usernameHash string) (*models.CredentialLookup, error) {
	if err := validateDigests(usernameHash); err != nil {
		return nil, err
	}

	c, err := s.repomanager.Credentials(s.db).FindByUsernameHash(ctx, usernameHash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, oops.Code("CREDENTIAL_NOT_FOUND").Wrap(err)
		}
		return nil, oops.Code("CREDENTIAL_LOOKUP_FAILED").Wrap(err)
	}

	return &models.CredentialLookup{ID: c.ID, FamilyName: c.FamilyName}, nil
}

func (s *CredentialService) Create(ctx context.Context, req models.CreateCredentialRequest) (*models.Credential, error) {
	if err := validateDigests(req.UsernameHash, req.PasswordHash); err != nil {
		return nil, err
	}
	family := strings.TrimSpace(req.FamilyName)
	if family == "" {
		return nil, oops.Code("CREDENTIAL_EMPTY_FAMILY").Wrap(common.ErrorValidation)
	}

	c, err := s.repomanager.Credentials(s.db).Create(ctx, &models.Credential{
		UsernameHash: req.UsernameHash,
		PasswordHash: cryptox.DerivePasswordDigest(req.PasswordHash, s.pepper),
		FamilyName:   family,
	})
	if err != nil {
		return nil, oops.Code("CREDENTIAL_CREATE_FAILED").Wrap(err)
	}
	return c, nil
}

// FamilyNameMatches compares family names the way the reset flow does:
// surrounding whitespace is ignored and case is folded.
func FamilyNameMatches(stored, candidate string) bool {
	return strings.EqualFold(strings.TrimSpace(stored), strings.TrimSpace(candidate))
}

// ResetPassword replaces the password of account id. The caller must know
// both the username hash and the family name of that account.
func (s *CredentialService) ResetPassword(ctx context.Context, id string, req models.UpdatePasswordRequest) error {
	if err := validateDigests(req.UsernameHash, req.PasswordHash); err != nil {
		return err
	}

	repo := s.repomanager.Credentials(s.db)
	c, err := repo.FindByUsernameHash(ctx, req.UsernameHash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return oops.Code("CREDENTIAL_NOT_FOUND").Wrap(err)
		}
		return oops.Code("CREDENTIAL_LOOKUP_FAILED").Wrap(err)
	}

	if c.ID != id || !FamilyNameMatches(c.FamilyName, req.FamilyName) {
		return oops.Code("AUTH_FAMILY_MISMATCH").With("credential_id", id).Wrap(common.ErrorUnauthorized)
	}

	if err := repo.UpdatePasswordHash(ctx, id, cryptox.DerivePasswordDigest(req.PasswordHash, s.pepper)); err != nil {
		return oops.Code("CREDENTIAL_UPDATE_FAILED").Wrap(err)
	}
	return nil
}

// Authenticate resolves a bearer token to a credential id.
func (s *CredentialService) Authenticate(token string) (string, error) {
	id, err := auth.GetCredentialIDFromToken(token, s.jwtSecret)
	if err != nil {
		return "", oops.Code("AUTH_BAD_TOKEN").Wrap(errors.Join(common.ErrorUnauthorized, err))
	}
	return id, nil
}
