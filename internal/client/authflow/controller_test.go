package authflow_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/dmitrijs2005/invaders/internal/client/authflow"
	"github.com/dmitrijs2005/invaders/internal/client/session"
	"github.com/dmitrijs2005/invaders/internal/cryptox"
)

var _ = Describe("Auth flow controller", func() {
	var (
		ctx      context.Context
		creds    *fakeCredentials
		sess     *fakeSession
		sched    *manualScheduler
		changes  []authflow.State
		ctrl     *authflow.Controller
		existing *account
	)

	BeforeEach(func() {
		ctx = context.Background()
		creds = newFakeCredentials()
		sess = &fakeSession{}
		sched = &manualScheduler{}
		changes = nil

		existing = &account{id: "c-42", passwordHash: cryptox.HashString("secret1"), familyName: "Dupont"}
		creds.accounts[cryptox.HashString("alice")] = existing

		ctrl = authflow.New(creds, sess,
			authflow.WithScheduler(sched.Schedule),
			authflow.WithOnChange(func(s authflow.State) { changes = append(changes, s) }),
		)
	})

	It("starts on the login form", func() {
		st := ctrl.State()
		Expect(st.Mode).To(Equal(authflow.ModeLogin))
		Expect(st.Step).To(Equal(authflow.StepIdentify))
		Expect(st.IsLoading).To(BeFalse())
	})

	Describe("login", func() {
		It("starts the session with the token and its expiry on success", func() {
			creds.expiresAt = time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)

			Expect(ctrl.Submit(ctx, authflow.Form{Username: "alice", Password: []byte("secret1")})).To(Succeed())

			Expect(ctrl.State().Authenticated).To(BeTrue())
			Expect(sess.started).To(Equal(1))
			Expect(sess.login).To(Equal(session.Login{
				CredentialID: "c-42",
				FamilyName:   "Dupont",
				AccessToken:  "tok-c-42",
				ExpiresAt:    creds.expiresAt,
			}))
		})

		It("reports a failure when the session cannot be stored", func() {
			sess.startErr = errors.New("disk full")

			err := ctrl.Submit(ctx, authflow.Form{Username: "alice", Password: []byte("secret1")})
			Expect(err).To(MatchError(authflow.ErrVerificationFailed))
			Expect(ctrl.State().Authenticated).To(BeFalse())
			Expect(sess.started).To(BeZero())
		})

		It("drops a reply that arrives after the user left the form", func() {
			creds.loginGate = make(chan struct{})
			done := make(chan error, 1)
			go func() { done <- ctrl.Submit(ctx, authflow.Form{Username: "alice", Password: []byte("secret1")}) }()

			Eventually(func() bool { return ctrl.State().IsLoading }).Should(BeTrue())
			ctrl.SwitchMode(authflow.ModeRegister)
			close(creds.loginGate)

			Eventually(done).Should(Receive(BeNil()))
			Expect(sess.Started()).To(BeZero())
			Expect(ctrl.State().Authenticated).To(BeFalse())
			Expect(ctrl.State().Mode).To(Equal(authflow.ModeRegister))
		})

		It("stays on login with an error when no credential matches", func() {
			err := ctrl.Submit(ctx, authflow.Form{Username: "alice", Password: []byte("wrong!!")})
			Expect(err).To(MatchError(authflow.ErrInvalidCredentials))

			st := ctrl.State()
			Expect(st.Mode).To(Equal(authflow.ModeLogin))
			Expect(st.Error).NotTo(BeEmpty())
			Expect(st.IsLoading).To(BeFalse())
			Expect(st.Authenticated).To(BeFalse())
			Expect(sess.started).To(BeZero())
		})

		It("rejects a second submission while one is in flight", func() {
			creds.loginGate = make(chan struct{})
			done := make(chan error, 1)
			go func() { done <- ctrl.Submit(ctx, authflow.Form{Username: "alice", Password: []byte("secret1")}) }()

			Eventually(func() bool { return ctrl.State().IsLoading }).Should(BeTrue())
			Expect(ctrl.Submit(ctx, authflow.Form{Username: "alice", Password: []byte("secret1")})).To(MatchError(authflow.ErrBusy))

			close(creds.loginGate)
			Eventually(done).Should(Receive(BeNil()))
			Expect(ctrl.State().IsLoading).To(BeFalse())
		})
	})

	Describe("register", func() {
		BeforeEach(func() {
			ctrl.SwitchMode(authflow.ModeRegister)
		})

		DescribeTable("validates before any network call",
			func(f authflow.Form, want error) {
				Expect(ctrl.Submit(ctx, f)).To(MatchError(want))
				Expect(creds.Calls()).To(BeZero())
				Expect(ctrl.State().Mode).To(Equal(authflow.ModeRegister))
				Expect(ctrl.State().Error).NotTo(BeEmpty())
			},
			Entry("short family name", authflow.Form{FamilyName: " D ", Username: "bob", Password: []byte("secret1"), ConfirmPassword: []byte("secret1")}, authflow.ErrFamilyNameTooShort),
			Entry("short username", authflow.Form{FamilyName: "Martin", Username: "bo", Password: []byte("secret1"), ConfirmPassword: []byte("secret1")}, authflow.ErrUsernameTooShort),
			Entry("short password", authflow.Form{FamilyName: "Martin", Username: "bob", Password: []byte("abc"), ConfirmPassword: []byte("abc")}, authflow.ErrPasswordTooShort),
			Entry("confirmation mismatch", authflow.Form{FamilyName: "Martin", Username: "bob", Password: []byte("secret1"), ConfirmPassword: []byte("secret2")}, authflow.ErrPasswordMismatch),
		)

		It("reports the minimum length for a too short password", func() {
			Expect(ctrl.Submit(ctx, authflow.Form{FamilyName: "Martin", Username: "bob", Password: []byte("abc"), ConfirmPassword: []byte("abc")})).
				To(MatchError(authflow.ErrPasswordTooShort))
			Expect(ctrl.State().Error).To(Equal("Password must be at least 6 characters"))
		})

		It("creates the account with a trimmed family name and returns to login after 2s", func() {
			Expect(ctrl.Submit(ctx, authflow.Form{FamilyName: "  Martin ", Username: "bob", Password: []byte("secret1"), ConfirmPassword: []byte("secret1")})).To(Succeed())

			acc := creds.accounts[cryptox.HashString("bob")]
			Expect(acc).NotTo(BeNil())
			Expect(acc.familyName).To(Equal("Martin"))
			Expect(acc.passwordHash).To(Equal(cryptox.HashString("secret1")))

			st := ctrl.State()
			Expect(st.Success).NotTo(BeEmpty())
			Expect(st.Mode).To(Equal(authflow.ModeRegister))

			pending := sched.Pending()
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].delay).To(Equal(2 * time.Second))

			sched.FireAll()
			Expect(ctrl.State().Mode).To(Equal(authflow.ModeLogin))
			Expect(ctrl.State().Success).To(BeEmpty())
			Expect(changes).To(HaveLen(1))
			Expect(changes[0].Mode).To(Equal(authflow.ModeLogin))
		})

		It("refuses a username that already exists and creates nothing", func() {
			err := ctrl.Submit(ctx, authflow.Form{FamilyName: "Martin", Username: "alice", Password: []byte("secret1"), ConfirmPassword: []byte("secret1")})
			Expect(err).To(MatchError(authflow.ErrUsernameTaken))
			Expect(creds.accounts).To(HaveLen(1))
			Expect(ctrl.State().Mode).To(Equal(authflow.ModeRegister))
			Expect(sched.Pending()).To(BeEmpty())
		})

		It("surfaces a generic error when the lookup fails", func() {
			creds.lookupErr = errors.New("connection reset")
			err := ctrl.Submit(ctx, authflow.Form{FamilyName: "Martin", Username: "bob", Password: []byte("secret1"), ConfirmPassword: []byte("secret1")})
			Expect(err).To(MatchError(authflow.ErrRegisterFailed))
			Expect(creds.accounts).To(HaveLen(1))
			Expect(ctrl.State().IsLoading).To(BeFalse())
		})

		It("drops the auto-transition when the user switched mode first", func() {
			Expect(ctrl.Submit(ctx, authflow.Form{FamilyName: "Martin", Username: "bob", Password: []byte("secret1"), ConfirmPassword: []byte("secret1")})).To(Succeed())

			ctrl.SwitchMode(authflow.ModeForgot)
			sched.FireAll()

			Expect(ctrl.State().Mode).To(Equal(authflow.ModeForgot))
			Expect(changes).To(BeEmpty())
		})
	})

	Describe("forgot password", func() {
		BeforeEach(func() {
			ctrl.SwitchMode(authflow.ModeForgot)
		})

		It("walks identify, verify and reset, then returns to login", func() {
			Expect(ctrl.Submit(ctx, authflow.Form{Username: "alice"})).To(Succeed())
			Expect(ctrl.State().Step).To(Equal(authflow.StepVerify))

			Expect(ctrl.Submit(ctx, authflow.Form{FamilyName: "  dUPONT "})).To(Succeed())
			Expect(ctrl.State().Step).To(Equal(authflow.StepReset))

			Expect(ctrl.Submit(ctx, authflow.Form{Password: []byte("newpass"), ConfirmPassword: []byte("newpass")})).To(Succeed())
			Expect(creds.lastUpdateID).To(Equal("c-42"))
			Expect(creds.lastUpdate.UsernameHash).To(Equal(cryptox.HashString("alice")))
			Expect(creds.lastUpdate.FamilyName).To(Equal("dUPONT"))
			Expect(existing.passwordHash).To(Equal(cryptox.HashString("newpass")))
			Expect(ctrl.State().Success).NotTo(BeEmpty())

			sched.FireAll()
			Expect(ctrl.State().Mode).To(Equal(authflow.ModeLogin))
		})

		It("stays on step 1 for an unknown username", func() {
			Expect(ctrl.Submit(ctx, authflow.Form{Username: "nobody"})).To(MatchError(authflow.ErrAccountNotFound))
			Expect(ctrl.State().Step).To(Equal(authflow.StepIdentify))
			Expect(ctrl.State().Error).NotTo(BeEmpty())
		})

		It("stays on step 2 when the family name differs", func() {
			Expect(ctrl.Submit(ctx, authflow.Form{Username: "alice"})).To(Succeed())
			Expect(ctrl.Submit(ctx, authflow.Form{FamilyName: "Durand"})).To(MatchError(authflow.ErrFamilyNameMismatch))
			Expect(ctrl.State().Step).To(Equal(authflow.StepVerify))
		})

		It("validates the new password before calling the server", func() {
			Expect(ctrl.Submit(ctx, authflow.Form{Username: "alice"})).To(Succeed())
			Expect(ctrl.Submit(ctx, authflow.Form{FamilyName: "Dupont"})).To(Succeed())
			calls := creds.Calls()

			Expect(ctrl.Submit(ctx, authflow.Form{Password: []byte("short"), ConfirmPassword: []byte("short")})).To(MatchError(authflow.ErrPasswordTooShort))
			Expect(ctrl.Submit(ctx, authflow.Form{Password: []byte("longer1"), ConfirmPassword: []byte("longer2")})).To(MatchError(authflow.ErrPasswordMismatch))
			Expect(creds.Calls()).To(Equal(calls))
			Expect(ctrl.State().Step).To(Equal(authflow.StepReset))
		})

		It("keeps step 3 editable when the update fails", func() {
			creds.updateErr = errors.New("timeout")
			Expect(ctrl.Submit(ctx, authflow.Form{Username: "alice"})).To(Succeed())
			Expect(ctrl.Submit(ctx, authflow.Form{FamilyName: "Dupont"})).To(Succeed())

			Expect(ctrl.Submit(ctx, authflow.Form{Password: []byte("newpass"), ConfirmPassword: []byte("newpass")})).To(MatchError(authflow.ErrResetFailed))
			Expect(ctrl.State().Step).To(Equal(authflow.StepReset))
			Expect(sched.Pending()).To(BeEmpty())
		})

		It("back to login discards the recovery progress", func() {
			Expect(ctrl.Submit(ctx, authflow.Form{Username: "alice"})).To(Succeed())
			ctrl.BackToLogin()
			ctrl.SwitchMode(authflow.ModeForgot)

			st := ctrl.State()
			Expect(st.Step).To(Equal(authflow.StepIdentify))
			Expect(st.Error).To(BeEmpty())
		})
	})

	Describe("FamilyNameMatches", func() {
		It("ignores case and surrounding whitespace", func() {
			Expect(authflow.FamilyNameMatches("  dupont ", "Dupont")).To(BeTrue())
			Expect(authflow.FamilyNameMatches("Dupond", "Dupont")).To(BeFalse())
		})
	})
})
