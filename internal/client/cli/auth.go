package cli

import (
	"context"

	"github.com/dmitrijs2005/invaders/internal/client/authflow"
	"github.com/dmitrijs2005/invaders/internal/common"
)

// Login asks for a username and password and submits them through the
// auth flow. Password bytes are wiped once the form has been hashed.
func (a *App) Login(ctx context.Context) error {
	a.auth.SwitchMode(authflow.ModeLogin)

	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	pw, err := GetPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	err = a.auth.Submit(ctx, authflow.Form{Username: username, Password: pw})
	a.report(err)
	if err != nil {
		return err
	}

	st, err := a.session.State(ctx)
	if err == nil {
		a.println(successStyle.Render("Welcome, " + st.FamilyName + "!"))
	}
	a.showProfileHint()
	return nil
}

// Register collects the new account form. On success the controller
// returns to the login form on its own after a short delay.
func (a *App) Register(ctx context.Context) error {
	a.auth.SwitchMode(authflow.ModeRegister)

	family, err := GetSimpleText(a.reader, "Family name", a.out)
	if err != nil {
		return err
	}
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	pw, confirm, err := a.readNewPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	defer common.WipeByteArray(confirm)

	err = a.auth.Submit(ctx, authflow.Form{
		Username:        username,
		Password:        pw,
		ConfirmPassword: confirm,
		FamilyName:      family,
	})
	a.report(err)
	return err
}

// Forgot walks the three reset steps. A step that fails is asked again; an
// empty answer abandons the flow and returns to login.
func (a *App) Forgot(ctx context.Context) error {
	a.auth.SwitchMode(authflow.ModeForgot)

	for {
		st := a.auth.State()
		if st.Mode != authflow.ModeForgot || st.Success != "" {
			return nil
		}

		var f authflow.Form
		switch st.Step {
		case authflow.StepIdentify:
			u, err := GetSimpleText(a.reader, "Username (empty to cancel)", a.out)
			if err != nil {
				return err
			}
			if u == "" {
				a.auth.BackToLogin()
				return nil
			}
			f.Username = u

		case authflow.StepVerify:
			fam, err := GetSimpleText(a.reader, "Family name on the account (empty to cancel)", a.out)
			if err != nil {
				return err
			}
			if fam == "" {
				a.auth.BackToLogin()
				return nil
			}
			f.FamilyName = fam

		default:
			pw, confirm, err := a.readNewPassword()
			if err != nil {
				return err
			}
			f.Password, f.ConfirmPassword = pw, confirm
		}

		err := a.auth.Submit(ctx, f)
		common.WipeByteArray(f.Password)
		common.WipeByteArray(f.ConfirmPassword)
		a.report(err)
	}
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.End(ctx); err != nil {
		a.fail(ctx, "logout failed", err)
		return err
	}
	a.auth.BackToLogin()
	a.println(mutedStyle.Render("Logged out."))
	return nil
}

// ClearLocalData forgets everything kept on this machine after a
// confirmation: the session, the remembered family and profile, and the
// cached points.
func (a *App) ClearLocalData(ctx context.Context) error {
	ok, err := GetYesNo(a.reader, "Clear all local data? You will be logged out", false, a.out)
	if err != nil || !ok {
		return err
	}

	if err := a.session.Forget(ctx); err != nil {
		a.fail(ctx, "clear local data", err)
		return err
	}
	if err := a.points.Forget(ctx); err != nil {
		a.fail(ctx, "clear local data", err)
		return err
	}
	a.auth.BackToLogin()
	a.println(mutedStyle.Render("Local data cleared."))
	return nil
}

func (a *App) readNewPassword() (pw, confirm []byte, err error) {
	pw, err = GetPassword(a.out, "New password")
	if err != nil {
		return nil, nil, err
	}
	confirm, err = GetPassword(a.out, "Confirm password")
	if err != nil {
		common.WipeByteArray(pw)
		return nil, nil, err
	}
	return pw, confirm, nil
}

// report prints the controller's error or success message after a submit.
func (a *App) report(err error) {
	st := a.auth.State()
	switch {
	case err != nil && st.Error != "":
		a.println(errorStyle.Render(st.Error))
	case err != nil:
		a.println(errorStyle.Render(err.Error()))
	case st.Success != "":
		a.println(successStyle.Render(st.Success))
	}
}

func (a *App) showProfileHint() {
	profiles := a.profiles.Profiles()
	if len(profiles) == 0 {
		a.println(mutedStyle.Render("No profiles yet. Use 'profiles add' to create one."))
		return
	}
	current, _ := a.profiles.Current()
	a.println(renderProfiles(profiles, current.ID))
}
