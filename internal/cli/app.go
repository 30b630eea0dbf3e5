// Package cli is the terminal front end: the same login and registration flows and the same
// dashboard as the web site, driven by prompts and backed by a local session file.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jrsteele09/ideathon-portal/dashboard"
	"github.com/jrsteele09/ideathon-portal/flow"
	"github.com/jrsteele09/ideathon-portal/sessions"
	"github.com/jrsteele09/ideathon-portal/users"
)

var (
	ErrNotSignedIn = errors.New("not signed in, run `ideathonctl login` first")
	ErrNotAdmin    = errors.New("only organisers can do this")
)

// Handle is the one profile the CLI keeps in its session file. Its tab namespace is as
// persistent as the profile one: an organiser stays signed in across runs until logout.
var Handle = sessions.Handle{Profile: "cli", Tab: "cli"}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Backend is everything the CLI calls on the registration API.
type Backend interface {
	flow.API
	dashboard.Backend
}

type App struct {
	Backend  Backend
	Sessions *sessions.Manager
	Prompter Prompter
	Out      io.Writer
	FlowOpts flow.Options

	// ProfileWait bounds how long Login waits for the profile after a successful code.
	ProfileWait time.Duration
}

func (a *App) store() *sessions.Store {
	return a.Sessions.Open(Handle)
}

func (a *App) println(style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(a.Out, style.Render(fmt.Sprintf(format, args...)))
}

// Login runs the email then code exchange and waits for the profile.
func (a *App) Login(ctx context.Context) error {
	store := a.store()
	ctx = sessions.NewContext(ctx, store)
	if !store.IsExpired(ctx) || store.LegacyAdmin(ctx) {
		a.println(mutedStyle, "Already signed in as %s.", a.signedInEmail(ctx, store))
		return nil
	}

	f := flow.NewLoginFlow(a.Backend, store, a.FlowOpts)
	defer f.Close()

	for f.Step() == flow.LoginEmailEntry {
		email, err := a.Prompter.Email()
		if err != nil {
			return err
		}
		f.SendOTP(ctx, email)
		if msg := f.Error(); msg != "" {
			a.println(errorStyle, "%s", msg)
		}
	}
	a.println(mutedStyle, "Code sent to %s.", f.Email())

	for f.Step() == flow.LoginOTPEntry {
		if err := a.enterCode(ctx, f); err != nil {
			return err
		}
	}

	if f.AdminLogin() {
		a.println(successStyle, "Signed in as organiser %s.", f.Email())
		return nil
	}
	if user := a.waitForProfile(ctx, store); user != nil {
		a.println(successStyle, "Welcome, %s.", user.Name)
		return nil
	}
	return errors.New("could not load your profile, you have been signed out")
}

// codeFlow is the part of either flow the code prompt drives.
type codeFlow interface {
	flow.OTPFlow
	Resend(ctx context.Context)
	VerifyOTP(ctx context.Context)
}

// enterCode asks for one code. An empty answer asks for a new code once the cooldown is over.
func (a *App) enterCode(ctx context.Context, f codeFlow) error {
	entry, cooldown := f.Entry(), f.Cooldown()
	code, err := a.Prompter.Code(entry.Len(), cooldown.Remaining())
	if err != nil {
		return err
	}
	if code == "" {
		if cooldown.Active() {
			a.println(mutedStyle, "Please wait %ds before asking for a new code.", cooldown.Remaining())
			return nil
		}
		f.Resend(ctx)
		a.println(mutedStyle, "A new code is on its way.")
		return nil
	}

	entry.Reset()
	entry.HandlePaste(code, 0)
	f.VerifyOTP(ctx)
	if msg := entry.Error(); msg != "" {
		a.println(errorStyle, "%s", msg)
	}
	return nil
}

func (a *App) waitForProfile(ctx context.Context, store *sessions.Store) *users.User {
	wait := a.ProfileWait
	if wait <= 0 {
		wait = 10 * time.Second
	}
	deadline := time.Now().Add(wait)
	for store.IsLoading() && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(50 * time.Millisecond):
		}
	}
	return store.User()
}

func (a *App) signedInEmail(ctx context.Context, store *sessions.Store) string {
	if store.LegacyAdmin(ctx) {
		return store.AdminEmail(ctx)
	}
	return store.Email(ctx)
}

// Register walks the registration steps until the backend accepts the team.
func (a *App) Register(ctx context.Context) error {
	f := flow.NewRegistrationFlow(a.Backend, a.FlowOpts)
	defer f.Close()

	for f.Step() != flow.RegSubmitted {
		var err error
		switch f.Step() {
		case flow.RegLeaderDetails:
			err = a.registerLeader(ctx, f)
		case flow.RegTeamDetails:
			err = a.registerTeam(f)
		case flow.RegIdeaDetails:
			err = a.registerIdea(ctx, f)
		}
		if err != nil {
			return err
		}
		if msg := f.Error(); msg != "" {
			a.println(errorStyle, "%s", msg)
		}
	}
	a.println(successStyle, "Team %s is registered. Sign in with `ideathonctl login`.", f.TeamName())
	return nil
}

func (a *App) registerLeader(ctx context.Context, f *flow.RegistrationFlow) error {
	if f.OTPSent() {
		a.println(titleStyle, "Verify %s", f.Leader().Email)
		return a.enterCode(ctx, f)
	}
	leader, err := a.Prompter.Leader(f.Leader())
	if err != nil {
		return err
	}
	f.SetLeader(leader)
	f.Continue(ctx)
	return nil
}

func (a *App) registerTeam(f *flow.RegistrationFlow) error {
	name, size, members, err := a.Prompter.Team(f.TeamName(), f.TeamSize(), f.Members())
	if err != nil {
		return err
	}
	f.SetTeamName(name)
	if err := f.SetTeamSize(size); err != nil {
		return fmt.Errorf("[cli Register] team size %d: %w", size, err)
	}
	for i, m := range members {
		f.SetMember(i, m)
	}
	f.NextToIdea()
	return nil
}

func (a *App) registerIdea(ctx context.Context, f *flow.RegistrationFlow) error {
	idea, err := a.Prompter.Idea(f.Idea())
	if err != nil {
		return err
	}
	f.SetIdea(idea)
	f.Submit(ctx)
	return nil
}

// Logout forgets everything in the session file.
func (a *App) Logout(ctx context.Context) error {
	if err := a.store().Logout(ctx); err != nil {
		return err
	}
	if err := a.Sessions.Discard(ctx, Handle); err != nil {
		return err
	}
	a.println(mutedStyle, "Signed out.")
	return nil
}

// Status prints what the session file says, without calling the backend.
func (a *App) Status(ctx context.Context) error {
	store := a.store()
	switch {
	case store.LegacyAdmin(ctx):
		a.println(successStyle, "Signed in as organiser %s.", store.AdminEmail(ctx))
	case store.IsExpired(ctx):
		a.println(mutedStyle, "Not signed in.")
	default:
		claims, _ := store.Claims(ctx)
		a.println(successStyle, "Signed in as %s (%s).", store.Email(ctx), store.Role(ctx))
		if claims != nil && claims.ExpiresAt != nil {
			a.println(mutedStyle, "Session expires %s.", claims.ExpiresAt.Local().Format(time.RFC1123))
		}
	}
	return nil
}

// resolve loads the dashboard view, fetching the admin roster fresh when only a cached one
// was available.
func (a *App) resolve(ctx context.Context) (dashboard.View, error) {
	store := a.store()
	ctx = sessions.NewContext(ctx, store)
	if !store.LegacyAdmin(ctx) {
		store.EnsureUser(ctx)
		if !store.IsAuthenticated() {
			return dashboard.View{}, ErrNotSignedIn
		}
	}

	router := dashboard.NewRouter(a.Backend)
	view := router.Resolve(ctx, store)
	if view.Kind == dashboard.ViewAdmin && view.Stale {
		view = router.RefreshRoster(ctx, store)
	}
	if view.Kind == dashboard.ViewRedirect {
		return view, ErrNotSignedIn
	}
	return view, nil
}

// Dashboard prints the participant's registration, or the roster filtered by search.
func (a *App) Dashboard(ctx context.Context, search string) error {
	view, err := a.resolve(ctx)
	if err != nil {
		return err
	}
	if view.Error != "" {
		a.println(errorStyle, "%s", view.Error)
	}
	if view.Kind == dashboard.ViewAdmin {
		a.printRoster(dashboard.Filter(view.Roster, search), len(view.Roster))
		return nil
	}
	if view.User != nil {
		a.printParticipant(view.User)
	}
	return nil
}

func (a *App) printRoster(roster []users.User, total int) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("S.No", "Name", "Email", "Mobile", "Institute", "Team", "Size", "Topic")
	for i := range roster {
		u := &roster[i]
		t.Row(fmt.Sprint(i+1), u.Name, u.Email, u.Mobile, u.Institute, u.TeamName, fmt.Sprint(u.TeamSize()), u.Topic)
	}
	fmt.Fprintln(a.Out, t.Render())
	a.println(mutedStyle, "%d of %d teams", len(roster), total)
}

func (a *App) printParticipant(u *users.User) {
	a.println(titleStyle, "Team %s", u.TeamName)
	fmt.Fprintf(a.Out, "Leader:    %s <%s> %s\n", u.Name, u.Email, u.Mobile)
	for _, m := range u.TeamMembers {
		fmt.Fprintf(a.Out, "Member:    %s <%s> %s\n", m.Name, m.Email, m.Mobile)
	}
	fmt.Fprintf(a.Out, "Institute: %s\n", u.Institute)
	fmt.Fprintf(a.Out, "Topic:     %s\n", u.Topic)
	fmt.Fprintf(a.Out, "Idea:      %s\n", u.IdeaDescription)
}

// Export writes the roster, filtered by search, to path as a spreadsheet.
func (a *App) Export(ctx context.Context, path, search string) error {
	view, err := a.resolve(ctx)
	if err != nil {
		return err
	}
	if view.Kind != dashboard.ViewAdmin {
		return ErrNotAdmin
	}
	roster := dashboard.Filter(view.Roster, search)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[cli Export] create %s: %w", path, err)
	}
	if err := dashboard.Export(file, roster); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("[cli Export] close %s: %w", path, err)
	}
	a.println(successStyle, "Wrote %d teams to %s.", len(roster), path)
	return nil
}
