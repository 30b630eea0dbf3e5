package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/ideathon-portal/api"
	"github.com/jrsteele09/ideathon-portal/flow"
	"github.com/jrsteele09/ideathon-portal/internal/config"
	"github.com/jrsteele09/ideathon-portal/internal/logging"
	"github.com/jrsteele09/ideathon-portal/sessions"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	apiURL  string
	dbPath  string
	timeout time.Duration
	verbose bool
	banner  bool
}

// NewRootCmd builds the ideathonctl command tree. prompter answers every interactive question.
func NewRootCmd(prompter Prompter) *cobra.Command {
	opts := rootOptions{}
	app := &App{Prompter: prompter}
	var closeRepo func() error

	root := &cobra.Command{
		Use:           "ideathonctl",
		Short:         "Sign in, register a team and read the ideathon dashboard from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			logging.SetupWithWriter(level, "DEV", cmd.ErrOrStderr())

			if opts.banner {
				fmt.Fprintln(cmd.OutOrStdout(), figure.NewFigure("ideathon", "", true).String())
			}

			repo, err := sessions.NewSQLiteRepo(cmd.Context(), opts.dbPath)
			if err != nil {
				return err
			}
			closeRepo = repo.Close

			client := api.NewClient(opts.apiURL, opts.timeout, api.WithSessionLookup(lookupSession))
			app.Backend = client
			app.Sessions = sessions.NewManager(repo, client)
			app.Out = cmd.OutOrStdout()
			app.FlowOpts = flowOptions()
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if closeRepo == nil {
				return nil
			}
			return closeRepo()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api", config.API{}.GetAPIBaseURL(), "Registration API base URL")
	flags.StringVar(&opts.dbPath, "db", defaultDBPath(), "Session file")
	flags.DurationVar(&opts.timeout, "timeout", config.API{}.GetAPITimeout(), "Timeout for each API call")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log API calls and session changes")
	flags.BoolVar(&opts.banner, "banner", false, "Print the banner first")

	root.AddCommand(
		runCmd("login", "Sign in with a one time code", app.Login),
		runCmd("register", "Register a team", app.Register),
		runCmd("logout", "Forget the stored session", app.Logout),
		runCmd("status", "Show who is signed in", app.Status),
		dashboardCmd(app),
		exportCmd(app),
	)
	return root
}

func runCmd(use, short string, run func(context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}
}

func dashboardCmd(app *App) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show your registration, or every registration for organisers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Dashboard(cmd.Context(), search)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only teams matching this text")
	return cmd
}

func exportCmd(app *App) *cobra.Command {
	var search, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Save the registrations as a spreadsheet (organisers only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Export(cmd.Context(), out, search)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "ideathon-registrations.xlsx", "Output file")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only teams matching this text")
	return cmd
}

// flowOptions reads the same OTP tunables the site uses.
func flowOptions() flow.Options {
	f := config.Flow{}
	return flow.Options{
		OTPLength:    f.GetOTPLength(),
		Cooldown:     f.GetOTPCooldown(),
		SuccessDelay: f.GetSuccessDelay(),
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ideathon", "session.db")
	}
	return filepath.Join(home, ".ideathon", "session.db")
}

func lookupSession(ctx context.Context) api.Session {
	if store := sessions.FromContext(ctx); store != nil {
		return store
	}
	return nil
}
