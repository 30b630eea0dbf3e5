package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/jrsteele09/ideathon-portal/flow"
	"github.com/jrsteele09/ideathon-portal/users"
)

// Prompter asks the terminal user for input. Code returns "" to ask for a new code.
type Prompter interface {
	Email() (string, error)
	Code(length, cooldown int) (string, error)
	Leader(current flow.Leader) (flow.Leader, error)
	Team(name string, size int, members []users.TeamMember) (string, int, []users.TeamMember, error)
	Idea(current flow.Idea) (flow.Idea, error)
}

// HuhPrompter prompts with charmbracelet/huh forms.
type HuhPrompter struct{}

var _ Prompter = HuhPrompter{}

func (HuhPrompter) Email() (string, error) {
	var email string
	input := huh.NewInput().
		Title("Email").
		Placeholder("you@college.edu").
		Value(&email)
	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return email, nil
}

func (HuhPrompter) Code(length, cooldown int) (string, error) {
	var code string
	description := "Leave empty to get a new code."
	if cooldown > 0 {
		description = fmt.Sprintf("A new code can be requested in %ds.", cooldown)
	}
	input := huh.NewInput().
		Title(fmt.Sprintf("%d digit code", length)).
		Description(description).
		CharLimit(length * 2).
		Value(&code)
	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return code, nil
}

func (HuhPrompter) Leader(current flow.Leader) (flow.Leader, error) {
	l := current
	form := huh.NewForm(huh.NewGroup(
		huh.NewNote().Title("Team leader"),
		huh.NewInput().Title("Name").Value(&l.Name),
		huh.NewInput().Title("Email").Value(&l.Email).Validate(validEmail),
		huh.NewInput().Title("Mobile").Value(&l.Mobile),
		huh.NewInput().Title("Institute").Value(&l.Institute),
	))
	if err := form.Run(); err != nil {
		return current, fmt.Errorf("prompt failed: %w", err)
	}
	return l, nil
}

func (HuhPrompter) Team(name string, size int, members []users.TeamMember) (string, int, []users.TeamMember, error) {
	sizes := make([]huh.Option[int], 0)
	for _, n := range flow.TeamSizeOptions() {
		sizes = append(sizes, huh.NewOption(strconv.Itoa(n), n))
	}
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Team name").Value(&name),
		huh.NewSelect[int]().Title("Team size (including you)").Options(sizes...).Value(&size),
	))
	if err := form.Run(); err != nil {
		return "", 0, nil, fmt.Errorf("prompt failed: %w", err)
	}

	out := make([]users.TeamMember, size-1)
	copy(out, members)
	groups := make([]*huh.Group, 0, len(out))
	for i := range out {
		groups = append(groups, huh.NewGroup(
			huh.NewNote().Title(fmt.Sprintf("Member %d", i+2)),
			huh.NewInput().Title("Name").Value(&out[i].Name),
			huh.NewInput().Title("Email").Value(&out[i].Email).Validate(validEmail),
			huh.NewInput().Title("Mobile").Value(&out[i].Mobile),
		))
	}
	if len(groups) > 0 {
		if err := huh.NewForm(groups...).Run(); err != nil {
			return "", 0, nil, fmt.Errorf("prompt failed: %w", err)
		}
	}
	return name, size, out, nil
}

func (HuhPrompter) Idea(current flow.Idea) (flow.Idea, error) {
	idea := current
	topics := make([]huh.Option[string], len(flow.Topics))
	for i, t := range flow.Topics {
		topics[i] = huh.NewOption(t, t)
	}
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title("Topic").Options(topics...).Value(&idea.Topic),
		huh.NewText().Title("Idea description").Value(&idea.Description),
	))
	if err := form.Run(); err != nil {
		return current, fmt.Errorf("prompt failed: %w", err)
	}
	return idea, nil
}

func validEmail(s string) error {
	if !users.ValidEmail(s) {
		return errors.New(flow.MsgEmailInvalid)
	}
	return nil
}
