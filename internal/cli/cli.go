package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flip-z/projectboard/internal/board"
	"github.com/flip-z/projectboard/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// usageError marks errors that exit with status 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

type globalFlags struct {
	root    string
	config  string
	verbose bool
	timeout time.Duration
}

type runner struct {
	flags  globalFlags
	stdout io.Writer
	stderr io.Writer
	log    *zap.Logger
}

func Run(ctx context.Context, args []string) int {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := &runner{stdout: stdout, stderr: stderr, log: zap.NewNop()}
	root := r.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	_ = r.log.Sync()
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, "error:", err)
	var ue usageError
	if errors.As(err, &ue) || strings.HasPrefix(err.Error(), "unknown command") {
		return 2
	}
	return 1
}

func (r *runner) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "projectboard",
		Short: "projectboard - project dashboard with pre-filled issue links",
		Long: `projectboard renders a JSON project feed as a filterable dashboard.

Each card links to a pre-filled "sign up" or "status change" issue in the
configured repository. The dashboard can be served over HTTP (up), exported
as static HTML (export --html) or browsed in the terminal (tui).

Repo layout:
  .projectboard/config.yaml
  data/projects.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&r.flags.root, "root", "", "dashboard root (default: current directory)")
	pf.StringVar(&r.flags.config, "config", "", "config file (default: .projectboard/config.yaml)")
	pf.BoolVarP(&r.flags.verbose, "verbose", "v", false, "debug logging")
	pf.DurationVar(&r.flags.timeout, "timeout", 0, "limit for one-shot feed loads (0: none)")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	root.AddCommand(
		r.initCommand(),
		r.upCommand(),
		r.downCommand(),
		r.exportCommand(),
		r.tuiCommand(),
		r.doctorCommand(),
		r.linksCommand(),
		r.logsCommand(),
	)
	return root
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return usagef("%s takes no arguments", cmd.Name())
	}
	return nil
}

func (r *runner) rootDir() (string, error) {
	if strings.TrimSpace(r.flags.root) != "" {
		return filepath.Abs(r.flags.root)
	}
	return os.Getwd()
}

// setLogger builds a JSON zap logger at level on w. --verbose forces debug.
func (r *runner) setLogger(w io.Writer, level zapcore.Level) {
	if r.flags.verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), level)
	r.log = zap.New(core)
}

func (r *runner) newApp() (*board.App, error) {
	root, err := r.rootDir()
	if err != nil {
		return nil, err
	}
	return board.NewApp(board.Options{Root: root, ConfigPath: r.flags.config, Logger: r.log})
}

func (r *runner) loadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.flags.timeout > 0 {
		return context.WithTimeout(ctx, r.flags.timeout)
	}
	return context.WithCancel(ctx)
}

func (r *runner) initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Scaffold config, a sample feed and issue templates",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := r.rootDir()
			if err != nil {
				return err
			}
			created, err := board.InitRepo(root)
			for _, p := range created {
				fmt.Fprintln(r.stdout, "Created", rel(root, p))
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(r.stdout, "Initialized .projectboard/")
			return nil
		},
	}
}

func (r *runner) upCommand() *cobra.Command {
	var (
		port       int
		foreground bool
		watch      bool
	)
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Serve the dashboard (background by default)",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r.setLogger(r.stderr, zapcore.InfoLevel)
			app, err := r.newApp()
			if err != nil {
				return err
			}
			if !foreground {
				pid, addr, err := board.SpawnBackgroundServer(app, board.SpawnOptions{
					ConfigPath:   r.flags.config,
					PortOverride: port,
					Watch:        watch,
					Verbose:      r.flags.verbose,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(r.stdout, "Started (pid %d) on http://%s\n", pid, addr)
				return nil
			}

			running, err := board.Up(cmd.Context(), app, board.UpOptions{PortOverride: port, Watch: watch})
			if err != nil {
				return err
			}
			fmt.Fprintf(r.stdout, "Listening on http://%s\n", running.Addr)
			return running.Wait()
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "override config port")
	cmd.Flags().BoolVar(&foreground, "foreground", false, "run in foreground")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload when a local feed file changes")
	return cmd
}

func (r *runner) downCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Stop the background server",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := r.rootDir()
			if err != nil {
				return err
			}
			res, err := board.Down(root, board.DownOptions{Force: force})
			if err != nil {
				return err
			}
			if !res.WasRunning {
				fmt.Fprintln(r.stdout, "Not running")
				return nil
			}
			fmt.Fprintf(r.stdout, "Stopped pid %d\n", res.PID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "send SIGKILL")
	return cmd
}

func (r *runner) exportCommand() *cobra.Command {
	var (
		html bool
		out  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a static HTML export",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !html {
				return usagef("export currently supports only --html")
			}
			r.setLogger(r.stderr, zapcore.WarnLevel)
			app, err := r.newApp()
			if err != nil {
				return err
			}
			outDir := out
			if strings.TrimSpace(outDir) == "" {
				outDir = board.DefaultExportDir(app.Root)
			} else if !filepath.IsAbs(outDir) {
				outDir = filepath.Join(app.Root, outDir)
			}

			ctx, cancel := r.loadContext(cmd.Context())
			defer cancel()
			res, err := board.ExportHTML(ctx, app, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.stdout, "Exported %d pages to %s\n", len(res.Files), res.Dir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&html, "html", false, "export static HTML")
	cmd.Flags().StringVar(&out, "out", "", "output directory (default: .projectboard/export)")
	return cmd
}

func (r *runner) tuiCommand() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the dashboard in the terminal",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := r.rootDir()
			if err != nil {
				return err
			}
			logPath := board.ServerLogPath(root)
			if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
				return err
			}
			f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return err
			}
			defer f.Close()
			// The terminal belongs to the UI; logs go to the file.
			r.setLogger(f, zapcore.InfoLevel)

			app, err := r.newApp()
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), app, tui.Options{Watch: watch || app.Config.Watch})
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "reload when a local feed file changes")
	return cmd
}

func (r *runner) doctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check config and feed",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r.setLogger(r.stderr, zapcore.WarnLevel)
			app, err := r.newApp()
			if err != nil {
				return err
			}
			ctx, cancel := r.loadContext(cmd.Context())
			defer cancel()

			report := board.Doctor(ctx, app)
			for _, p := range report.Problems {
				fmt.Fprintln(r.stdout, "PROBLEM:", p)
			}
			for _, w := range report.Warnings {
				fmt.Fprintln(r.stdout, "WARN:", w)
			}
			if len(report.Problems) != 0 {
				return fmt.Errorf("%d problem(s) found", len(report.Problems))
			}
			fmt.Fprintf(r.stdout, "OK (%d projects from %s)\n", report.Projects, app.Loader.Path())
			return nil
		},
	}
}

func (r *runner) linksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "links ID",
		Short: "Print the sign-up and status-change links for a project",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usagef("usage: projectboard links ID")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			r.setLogger(r.stderr, zapcore.WarnLevel)
			app, err := r.newApp()
			if err != nil {
				return err
			}
			ctx, cancel := r.loadContext(cmd.Context())
			defer cancel()
			if err := app.Controller.Start(ctx); err != nil {
				return err
			}
			p, ok := app.Find(args[0])
			if !ok {
				return fmt.Errorf("unknown project %q", args[0])
			}
			lb := app.Renderer.Links()
			fmt.Fprintln(r.stdout, "Sign up:      ", lb.SignUpURL(p))
			fmt.Fprintln(r.stdout, "Status change:", lb.StatusChangeURL(p))
			if !p.CanSignUp() {
				fmt.Fprintf(r.stdout, "(status %q: sign-up is only offered for open projects)\n", p.Status)
			}
			return nil
		},
	}
}

func (r *runner) logsCommand() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the end of the server and terminal UI log",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := r.rootDir()
			if err != nil {
				return err
			}
			s, err := board.TailLines(board.ServerLogPath(root), n)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					fmt.Fprintln(r.stdout, "No log yet")
					return nil
				}
				return err
			}
			fmt.Fprint(r.stdout, s)
			if s != "" && !strings.HasSuffix(s, "\n") {
				fmt.Fprintln(r.stdout)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "tail", "n", 40, "number of lines")
	return cmd
}

func rel(root, p string) string {
	if rp, err := filepath.Rel(root, p); err == nil {
		return rp
	}
	return p
}
