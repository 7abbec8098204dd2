package demo

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// promptTheme mirrors the muted/primary palette used throughout this
// package's lipgloss styles.
func promptTheme() *huh.Theme {
	t := huh.ThemeCharm()
	t.Focused.Title = t.Focused.Title.Foreground(colorPrimary)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(colorPrimary)
	return t
}

// ConnectionDetails is the set of fields ConnectionForm collects.
type ConnectionDetails struct {
	Host     string
	Port     string
	User     string
	Database string
	Password string
}

// ConnectionForm interactively prompts for the connection parameters
// needed to drive a startup handshake, used by `pgwiredump handshake`
// when none are supplied as flags.
func ConnectionForm() (ConnectionDetails, error) {
	d := ConnectionDetails{Host: "localhost", Port: "5432", User: "postgres"}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Host").Value(&d.Host),
			huh.NewInput().Title("Port").Value(&d.Port),
			huh.NewInput().Title("User").Value(&d.User),
			huh.NewInput().Title("Database").Value(&d.Database),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&d.Password),
		),
	).WithTheme(promptTheme())

	if err := form.Run(); err != nil {
		return ConnectionDetails{}, fmt.Errorf("connection form: %w", err)
	}
	return d, nil
}

// SelectCapture prompts the user to pick one of several candidate
// capture file paths, used by `pgwiredump decode` when it is given
// more than one positional path.
func SelectCapture(paths []string) (string, error) {
	if len(paths) == 1 {
		return paths[0], nil
	}

	var chosen string
	options := make([]huh.Option[string], len(paths))
	for i, p := range paths {
		options[i] = huh.NewOption(p, p)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select a capture to decode").
				Options(options...).
				Value(&chosen),
		),
	).WithTheme(promptTheme())

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("capture selection: %w", err)
	}
	return chosen, nil
}

// ConfirmInteractive asks a yes/no question, defaulting to yes.
func ConfirmInteractive(question string) (bool, error) {
	confirmed := true
	err := huh.NewConfirm().
		Title(question).
		Value(&confirmed).
		WithTheme(promptTheme()).
		Run()
	if err != nil {
		return false, fmt.Errorf("confirm: %w", err)
	}
	return confirmed, nil
}
