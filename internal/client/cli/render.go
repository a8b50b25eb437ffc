package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/invaders/internal/colorx"
	"github.com/dmitrijs2005/invaders/internal/models"
)

var (
	onlineStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22C55E"))
	offlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	titleStyle   = lipgloss.NewStyle().Bold(true)

	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	toSelectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
)

// textOn picks black or white text for a background color.
func textOn(hex string) lipgloss.Color {
	if colorx.HexToHSL(hex).L > 60 {
		return lipgloss.Color("#000000")
	}
	return lipgloss.Color("#FFFFFF")
}

func renderSwatch(hex string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("   ")
}

func renderBadge(p models.Profile) string {
	color := p.Color
	if color == "" {
		color = colorx.DefaultProfileColor
	}
	initials := p.Initials
	if initials == "" {
		initials = defaultInitials(p.Name)
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(textOn(color)).
		Background(lipgloss.Color(color)).
		Padding(0, 1).
		Render(initials)
}

func renderMode(m Mode) string {
	if m == ModeOnline {
		return onlineStyle.Render(string(m))
	}
	return offlineStyle.Render(string(m))
}

func renderStatus(s models.PointStatus) string {
	if s == models.StatusSelected {
		return selectedStyle.Render("selected")
	}
	return toSelectStyle.Render("to select")
}

func renderProfiles(profiles []models.Profile, currentID string) string {
	if len(profiles) == 0 {
		return mutedStyle.Render("No profiles yet. Use 'profiles add' to create one.")
	}

	var b strings.Builder
	for i, p := range profiles {
		marker := " "
		if p.ID == currentID {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %2d. %s %s %s", marker, i+1, renderBadge(p), p.Name, mutedStyle.Render(p.Color))
		if p.AvatarURL != nil {
			fmt.Fprintf(&b, " %s", mutedStyle.Render(*p.AvatarURL))
		}
		if i < len(profiles)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func renderPoints(points []models.Point, profiles []models.Profile) string {
	if len(points) == 0 {
		return mutedStyle.Render("No points.")
	}

	byID := make(map[string]models.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	var b strings.Builder
	for i, p := range points {
		fmt.Fprintf(&b, "%3d. %s [%s] %d pts (%.5f, %.5f)",
			i+1, titleStyle.Render(p.Name), renderStatus(p.Status), p.Points, p.Latitude, p.Longitude)
		if p.Destroyed {
			fmt.Fprintf(&b, " %s", errorStyle.Render("destroyed"))
		}
		if p.ProfileID != nil {
			if creator, ok := byID[*p.ProfileID]; ok {
				fmt.Fprintf(&b, " %s", renderBadge(creator))
			}
		}
		if p.Address != "" {
			fmt.Fprintf(&b, "\n     %s", mutedStyle.Render(p.Address))
		}
		if i < len(points)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// renderPalette lays the preset swatches out six per row, numbered from 1.
func renderPalette() string {
	var b strings.Builder
	for i, hex := range colorx.PresetColors {
		fmt.Fprintf(&b, "%2d %s %s  ", i+1, renderSwatch(hex), hex)
		if (i+1)%6 == 0 {
			b.WriteByte('\n')
		}
	}
	return strings.TrimRight(b.String(), "\n ")
}

func defaultInitials(name string) string {
	var out []rune
	for _, w := range strings.Fields(name) {
		out = append(out, []rune(strings.ToUpper(w))[0])
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}
