//go:build integration

package repomanager_test

import (
	"context"
	"database/sql"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dmitrijs2005/invaders/internal/common"
	"github.com/dmitrijs2005/invaders/internal/cryptox"
	"github.com/dmitrijs2005/invaders/internal/dbx"
	"github.com/dmitrijs2005/invaders/internal/models"
	"github.com/dmitrijs2005/invaders/internal/server/repositories/repomanager"
)

var (
	suiteCtx    context.Context
	suiteCancel context.CancelFunc
	container   *postgres.PostgresContainer
	db          *sql.DB
	rm          repomanager.RepositoryManager
)

var _ = BeforeSuite(func() {
	suiteCtx, suiteCancel = context.WithTimeout(context.Background(), 3*time.Minute)

	var err error
	container, err = postgres.Run(suiteCtx,
		"postgres:18-alpine",
		postgres.WithDatabase("invaders_test"),
		postgres.WithUsername("invaders"),
		postgres.WithPassword("invaders"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	Expect(err).NotTo(HaveOccurred())

	dsn, err := container.ConnectionString(suiteCtx, "sslmode=disable")
	Expect(err).NotTo(HaveOccurred())

	db, err = dbx.OpenWithRetry(suiteCtx, "pgx", dsn, dbx.DefaultConnectBackoff)
	Expect(err).NotTo(HaveOccurred())

	rm = repomanager.NewPostgresRepositoryManager()
	Expect(rm.RunMigrations(suiteCtx, db)).To(Succeed())
})

var _ = AfterSuite(func() {
	if db != nil {
		_ = db.Close()
	}
	if container != nil {
		_ = container.Terminate(context.Background())
	}
	if suiteCancel != nil {
		suiteCancel()
	}
})

func newCredential(name string) *models.Credential {
	c, err := rm.Credentials(db).Create(suiteCtx, &models.Credential{
		UsernameHash: cryptox.HashString(name),
		PasswordHash: cryptox.HashString(name + "-pw"),
		FamilyName:   name,
	})
	Expect(err).NotTo(HaveOccurred())
	return c
}

var _ = Describe("PostgreSQL repositories", func() {
	BeforeEach(func() {
		_, err := db.ExecContext(suiteCtx, `TRUNCATE points, profiles, credentials CASCADE`)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("credentials", func() {
		It("finds an account only by its exact hash pair", func() {
			c := newCredential("dupont")

			got, err := rm.Credentials(db).FindByHashes(suiteCtx, c.UsernameHash, c.PasswordHash)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(c.ID))

			_, err = rm.Credentials(db).FindByHashes(suiteCtx, c.UsernameHash, cryptox.HashString("wrong"))
			Expect(err).To(MatchError(common.ErrorNotFound))
		})

		It("rejects a second account with the same username hash", func() {
			newCredential("dupont")
			_, err := rm.Credentials(db).Create(suiteCtx, &models.Credential{
				UsernameHash: cryptox.HashString("dupont"),
				PasswordHash: cryptox.HashString("other"),
				FamilyName:   "Other",
			})
			Expect(err).To(MatchError(common.ErrorAlreadyExists))
		})

		It("updates the stored password hash", func() {
			c := newCredential("dupont")
			newHash := cryptox.HashString("new")

			Expect(rm.Credentials(db).UpdatePasswordHash(suiteCtx, c.ID, newHash)).To(Succeed())

			_, err := rm.Credentials(db).FindByHashes(suiteCtx, c.UsernameHash, newHash)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("profiles", func() {
		It("lists profiles by name and scopes them to their credential", func() {
			c := newCredential("dupont")
			other := newCredential("martin")
			repo := rm.Profiles(db)

			for _, name := range []string{"Zoe", "Alice"} {
				_, err := repo.Create(suiteCtx, &models.Profile{CredentialID: c.ID, Name: name, Initials: name[:1], Color: "#3B82F6"})
				Expect(err).NotTo(HaveOccurred())
			}

			list, err := repo.ListByCredential(suiteCtx, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))
			Expect(list[0].Name).To(Equal("Alice"))

			_, err = repo.Update(suiteCtx, other.ID, list[0].ID, "#EF4444", nil)
			Expect(err).To(MatchError(common.ErrorNotFound))
		})

		It("bumps updated_at and stores the avatar url", func() {
			c := newCredential("dupont")
			repo := rm.Profiles(db)
			p, err := repo.Create(suiteCtx, &models.Profile{CredentialID: c.ID, Name: "Alice", Initials: "A", Color: "#3B82F6"})
			Expect(err).NotTo(HaveOccurred())

			url := "http://cdn/avatars/a.png"
			updated, err := repo.Update(suiteCtx, c.ID, p.ID, "#EF4444", &url)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Color).To(Equal("#EF4444"))
			Expect(updated.AvatarURL).To(HaveValue(Equal(url)))
			Expect(updated.UpdatedAt).To(BeTemporally(">=", p.UpdatedAt))
		})
	})

	Describe("points", func() {
		input := func(name string, status models.PointStatus) models.PointInput {
			return models.PointInput{Name: name, Latitude: 48.85, Longitude: 2.35, Status: status}
		}

		It("enforces name uniqueness after trimming and case folding", func() {
			repo := rm.Points(db)
			_, err := repo.Create(suiteCtx, input("Rue de Rivoli", models.StatusToSelect))
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.Create(suiteCtx, input("  rue de rivoli ", models.StatusSelected))
			Expect(err).To(MatchError(common.ErrorAlreadyExists))
		})

		It("filters by status and searches by prefix", func() {
			repo := rm.Points(db)
			for _, in := range []models.PointInput{
				input("Rue A", models.StatusSelected),
				input("Rue B", models.StatusToSelect),
				input("Gare", models.StatusSelected),
				input("100%_literal", models.StatusToSelect),
			} {
				_, err := repo.Create(suiteCtx, in)
				Expect(err).NotTo(HaveOccurred())
			}

			selected, err := repo.List(suiteCtx, models.PointFilter{Status: models.StatusSelected})
			Expect(err).NotTo(HaveOccurred())
			Expect(selected).To(HaveLen(2))

			all, err := repo.List(suiteCtx, models.PointFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(4))

			found, err := repo.SearchByPrefix(suiteCtx, "rue", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(2))

			found, err = repo.SearchByPrefix(suiteCtx, "100%_", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(1))

			found, err = repo.SearchByPrefix(suiteCtx, "%", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeEmpty())
		})

		It("detaches points when their creator profile is deleted", func() {
			c := newCredential("dupont")
			p, err := rm.Profiles(db).Create(suiteCtx, &models.Profile{CredentialID: c.ID, Name: "Alice", Initials: "A", Color: "#3B82F6"})
			Expect(err).NotTo(HaveOccurred())

			in := input("Rue A", models.StatusSelected)
			in.ProfileID = &p.ID
			pt, err := rm.Points(db).Create(suiteCtx, in)
			Expect(err).NotTo(HaveOccurred())
			Expect(pt.ProfileID).To(HaveValue(Equal(p.ID)))

			Expect(rm.Profiles(db).Delete(suiteCtx, c.ID, p.ID)).To(Succeed())

			got, err := rm.Points(db).Get(suiteCtx, pt.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ProfileID).To(BeNil())
		})

		It("rejects an unknown creator profile", func() {
			bogus := "00000000-0000-0000-0000-000000000000"
			in := input("Rue A", models.StatusSelected)
			in.ProfileID = &bogus

			_, err := rm.Points(db).Create(suiteCtx, in)
			Expect(err).To(MatchError(common.ErrorValidation))
		})
	})
})
