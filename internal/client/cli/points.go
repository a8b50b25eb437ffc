package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/invaders/internal/client/geocode"
	"github.com/dmitrijs2005/invaders/internal/client/services"
	"github.com/dmitrijs2005/invaders/internal/models"
)

// suggestWait bounds how long the address prompt waits for geocoding.
const suggestWait = 10 * time.Second

var errNoSuggestions = errors.New("geocoder did not answer in time")

// Points dispatches the points subcommands. A bare filter name (all,
// selected, to_select) or no argument lists points.
func (a *App) Points(ctx context.Context, args []string) error {
	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}

	var err error
	if filter, ok := models.ParsePointFilter(sub); ok {
		err = a.listPoints(ctx, filter)
	} else {
		switch sub {
		case "add":
			err = a.addPoint(ctx)
		case "edit":
			err = a.withPoint(ctx, args, a.editPoint)
		case "toggle":
			err = a.withPoint(ctx, args, a.togglePoint)
		case "delete":
			err = a.withPoint(ctx, args, a.deletePoint)
		default:
			err = fmt.Errorf("%w: points [all | selected | to_select | add | edit N | toggle N | delete N]", errUsage)
		}
	}

	if err != nil {
		a.fail(ctx, "points", err)
	}
	return err
}

// Search prints the points whose name starts with the given prefix.
func (a *App) Search(ctx context.Context, args []string) error {
	prefix := strings.Join(args, " ")
	if strings.TrimSpace(prefix) == "" {
		err := fmt.Errorf("%w: search PREFIX", errUsage)
		a.fail(ctx, "search", err)
		return err
	}

	found, err := a.points.Search(ctx, prefix)
	if err != nil {
		a.fail(ctx, "search", err)
		return err
	}
	a.println(renderPoints(found, a.profiles.Profiles()))
	return nil
}

func (a *App) listPoints(ctx context.Context, filter models.PointFilter) error {
	list, err := a.points.Load(ctx, filter)
	if err != nil {
		return err
	}
	if a.points.FromCache() {
		a.println(offlineStyle.Render("Server unavailable, showing cached points."))
	}
	a.println(renderPoints(list, a.profiles.Profiles()))
	return nil
}

func (a *App) addPoint(ctx context.Context) error {
	if err := a.ensurePointsLoaded(ctx); err != nil {
		return err
	}

	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	if a.points.NameTaken(ctx, name, "") {
		return services.ErrDuplicateName
	}

	in := models.PointInput{Name: name, Status: models.StatusToSelect}
	if p, ok := a.profiles.Current(); ok {
		in.ProfileID = &p.ID
	}
	if err := a.readPointDetails(ctx, &in); err != nil {
		return err
	}

	p, err := a.points.Create(ctx, in)
	if err != nil {
		return err
	}
	a.println(successStyle.Render("Added " + p.Name))
	return nil
}

func (a *App) editPoint(ctx context.Context, p models.Point) error {
	in := inputFromPoint(p)

	name, err := GetWithDefault(a.reader, "Name", p.Name, a.out)
	if err != nil {
		return err
	}
	if a.points.NameTaken(ctx, name, p.ID) {
		return services.ErrDuplicateName
	}
	in.Name = name

	if err := a.readPointDetails(ctx, &in); err != nil {
		return err
	}

	updated, err := a.points.Update(ctx, p.ID, in)
	if err != nil {
		return err
	}
	a.println(successStyle.Render("Updated " + updated.Name))
	return nil
}

func (a *App) togglePoint(ctx context.Context, p models.Point) error {
	in := inputFromPoint(p)
	if p.Status == models.StatusSelected {
		in.Status = models.StatusToSelect
	} else {
		in.Status = models.StatusSelected
	}

	updated, err := a.points.Update(ctx, p.ID, in)
	if err != nil {
		return err
	}
	a.println(updated.Name + ": " + renderStatus(updated.Status))
	return nil
}

func (a *App) deletePoint(ctx context.Context, p models.Point) error {
	ok, err := GetYesNo(a.reader, fmt.Sprintf("Delete %s?", p.Name), false, a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.points.Delete(ctx, p.ID); err != nil {
		return err
	}
	a.println(mutedStyle.Render("Deleted " + p.Name))
	return nil
}

// readPointDetails prompts for everything but the name, using in as the
// defaults.
func (a *App) readPointDetails(ctx context.Context, in *models.PointInput) error {
	addr, err := GetWithDefault(a.reader, "Address", in.Address, a.out)
	if err != nil {
		return err
	}

	picked := false
	if addr != "" && addr != in.Address {
		s, ok, err := a.pickSuggestion(ctx, addr)
		if err != nil {
			return err
		}
		if ok {
			in.Address, in.Latitude, in.Longitude = s.DisplayName, s.Lat, s.Lon
			picked = true
		}
	}
	if !picked {
		in.Address = addr
		if in.Latitude, err = GetFloat(a.reader, "Latitude", in.Latitude, a.out); err != nil {
			return err
		}
		if in.Longitude, err = GetFloat(a.reader, "Longitude", in.Longitude, a.out); err != nil {
			return err
		}
	}

	if in.Points, err = GetInt(a.reader, "Points", in.Points, a.out); err != nil {
		return err
	}

	status, err := GetWithDefault(a.reader, "Status (selected/to_select)", string(in.Status), a.out)
	if err != nil {
		return err
	}
	in.Status = models.PointStatus(status)

	if in.Destroyed, err = GetYesNo(a.reader, "Destroyed?", in.Destroyed, a.out); err != nil {
		return err
	}

	desc, err := GetMultiline(a.reader, "Description", a.out)
	if err != nil {
		return err
	}
	if desc != "" {
		in.Description = desc
	}
	return nil
}

// pickSuggestion geocodes addr and lets the user pick one of the results.
// ok is false when there was nothing to pick or the user declined.
func (a *App) pickSuggestion(ctx context.Context, addr string) (geocode.Suggestion, bool, error) {
	list, err := a.suggest(ctx, addr)
	if err != nil {
		a.println(mutedStyle.Render("No address suggestions: " + err.Error()))
		return geocode.Suggestion{}, false, nil
	}
	if len(list) == 0 {
		a.println(mutedStyle.Render("No address suggestions."))
		return geocode.Suggestion{}, false, nil
	}

	for i, s := range list {
		a.println(fmt.Sprintf("%2d. %s %s", i+1, s.DisplayName,
			mutedStyle.Render(fmt.Sprintf("(%.5f, %.5f)", s.Lat, s.Lon))))
	}

	for {
		choice, err := GetSimpleText(a.reader, "Pick a suggestion (empty to enter coordinates)", a.out)
		if err != nil {
			return geocode.Suggestion{}, false, err
		}
		if choice == "" {
			return geocode.Suggestion{}, false, nil
		}
		if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(list) {
			return list[n-1], true, nil
		}
		a.println(errorStyle.Render("Pick 1-" + strconv.Itoa(len(list))))
	}
}

// suggest runs query through the debounced suggester and waits for the
// answer carrying its token. Answers to earlier queries are skipped.
func (a *App) suggest(ctx context.Context, query string) ([]geocode.Suggestion, error) {
	token := a.suggester.Update(query)

	timeout := time.NewTimer(suggestWait)
	defer timeout.Stop()

	for {
		select {
		case r := <-a.suggestions:
			if r.Token != token {
				continue
			}
			return r.Suggestions, r.Err
		case <-timeout.C:
			return nil, errNoSuggestions
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (a *App) ensurePointsLoaded(ctx context.Context) error {
	if len(a.points.Points()) > 0 {
		return nil
	}
	_, err := a.points.Load(ctx, a.points.Filter())
	return err
}

// withPoint resolves args[1] against the loaded list, by 1-based position
// or id, and calls fn with the match.
func (a *App) withPoint(ctx context.Context, args []string, fn func(context.Context, models.Point) error) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: points %s N", errUsage, args[0])
	}
	if err := a.ensurePointsLoaded(ctx); err != nil {
		return err
	}
	p, ok := pickPoint(a.points.Points(), args[1])
	if !ok {
		return fmt.Errorf("no point %q, list points first", args[1])
	}
	return fn(ctx, p)
}

func pickPoint(list []models.Point, ref string) (models.Point, bool) {
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(list) {
		return list[n-1], true
	}
	for _, p := range list {
		if p.ID == ref {
			return p, true
		}
	}
	return models.Point{}, false
}

func inputFromPoint(p models.Point) models.PointInput {
	return models.PointInput{
		Name:        p.Name,
		Address:     p.Address,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		Points:      p.Points,
		Status:      p.Status,
		Destroyed:   p.Destroyed,
		Description: p.Description,
		ProfileID:   p.ProfileID,
	}
}
