package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/invaders/internal/colorx"
	"github.com/dmitrijs2005/invaders/internal/models"
)

var errUsage = errors.New("usage")

// Profiles dispatches the profiles subcommands. With no arguments it lists
// the family's profiles and marks the current one.
func (a *App) Profiles(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.listProfiles()
	}

	var err error
	switch args[0] {
	case "add":
		err = a.addProfile(ctx)
	case "use":
		err = a.withProfile(args, func(p models.Profile) error {
			if err := a.profiles.Select(ctx, p.ID); err != nil {
				return err
			}
			a.println("Current profile: " + renderBadge(p) + " " + p.Name)
			return nil
		})
	case "color":
		err = a.withProfile(args, func(p models.Profile) error {
			hex, err := a.chooseColor(p.Color)
			if err != nil {
				return err
			}
			updated, err := a.profiles.SetColor(ctx, p.ID, hex)
			if err != nil {
				return err
			}
			a.println("Updated " + renderBadge(*updated) + " " + updated.Name)
			return nil
		})
	case "avatar":
		if len(args) != 3 {
			err = fmt.Errorf("%w: profiles avatar N PATH", errUsage)
			break
		}
		err = a.withProfile(args[:2], func(p models.Profile) error {
			updated, err := a.profiles.UploadAvatar(ctx, p.ID, args[2])
			if err != nil {
				return err
			}
			if updated.AvatarURL != nil {
				a.println(successStyle.Render("Avatar uploaded: " + *updated.AvatarURL))
			}
			return nil
		})
	case "noavatar":
		err = a.withProfile(args, func(p models.Profile) error {
			_, err := a.profiles.RemoveAvatar(ctx, p.ID)
			if err == nil {
				a.println(mutedStyle.Render("Avatar removed."))
			}
			return err
		})
	case "delete":
		err = a.withProfile(args, func(p models.Profile) error {
			ok, err := GetYesNo(a.reader, fmt.Sprintf("Delete profile %s?", p.Name), false, a.out)
			if err != nil || !ok {
				return err
			}
			if err := a.profiles.Delete(ctx, p.ID); err != nil {
				return err
			}
			a.println(mutedStyle.Render("Profile deleted."))
			return nil
		})
	default:
		err = fmt.Errorf("%w: profiles [add | use N | color N | avatar N PATH | noavatar N | delete N]", errUsage)
	}

	if err != nil {
		a.fail(ctx, "profiles "+args[0], err)
	}
	return err
}

func (a *App) listProfiles() error {
	current, _ := a.profiles.Current()
	a.println(renderProfiles(a.profiles.Profiles(), current.ID))
	return nil
}

func (a *App) addProfile(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	initials, err := GetWithDefault(a.reader, "Initials", defaultInitials(name), a.out)
	if err != nil {
		return err
	}
	color, err := a.chooseColor(colorx.DefaultProfileColor)
	if err != nil {
		return err
	}

	p, err := a.profiles.Add(ctx, name, initials, color)
	if err != nil {
		return err
	}
	a.println(successStyle.Render("Added ") + renderBadge(*p) + " " + p.Name)
	return nil
}

// withProfile resolves args[1], a 1-based list position or a profile id,
// and calls fn with the match.
func (a *App) withProfile(args []string, fn func(models.Profile) error) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: profiles %s N", errUsage, args[0])
	}
	p, ok := pickProfile(a.profiles.Profiles(), args[1])
	if !ok {
		return fmt.Errorf("no profile %q", args[1])
	}
	return fn(p)
}

func pickProfile(profiles []models.Profile, ref string) (models.Profile, bool) {
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(profiles) {
		return profiles[n-1], true
	}
	for _, p := range profiles {
		if p.ID == ref {
			return p, true
		}
	}
	return models.Profile{}, false
}
