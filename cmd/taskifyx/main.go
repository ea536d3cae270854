package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	serveradapter "github.com/hylla/taskifyx/internal/adapters/server"
	"github.com/hylla/taskifyx/internal/adapters/taskapi"
	"github.com/hylla/taskifyx/internal/board"
	"github.com/hylla/taskifyx/internal/config"
	"github.com/hylla/taskifyx/internal/platform"
	"github.com/hylla/taskifyx/internal/tui"
)

// version is stamped at build time.
var version = "dev"

// program is the part of tea.Program that run needs.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the board program; tests swap it out.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
	return serveradapter.Run(ctx, cfg, deps)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes one CLI invocation. Errors are already rendered to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	if err := config.LoadDotEnv(".env"); err != nil {
		_, _ = fmt.Fprintf(stderr, "warning: %v\n", err)
	}

	c := &cli{stdout: stdout, stderr: stderr, getenv: os.Getenv}
	root := c.newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	dbPath     string
	appName    string
	apiURL     string
	devMode    bool
}

// cli carries process IO and flag state into command handlers.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
	opts   globalOptions
}

// runtimeEnv is the resolved configuration and logger for one command flow.
type runtimeEnv struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
}

func (c *cli) newRootCommand() *cobra.Command {
	defaultDevMode := version == "dev"
	if envDev, ok := config.ParseBoolEnv(c.getenv, config.EnvDevMode); ok {
		defaultDevMode = envDev
	}
	appName := platform.DefaultAppName
	if envApp := strings.TrimSpace(c.getenv(config.EnvAppName)); envApp != "" {
		appName = envApp
	}

	root := &cobra.Command{
		Use:           "taskifyx",
		Short:         "Kanban task board over a REST task API",
		Long:          "taskifyx shows a three-column task board in the terminal and keeps it in sync with a remote task API.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			return c.runBoard()
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&c.opts.dbPath, "db", "", "path to sqlite database (serve)")
	flags.StringVar(&c.opts.appName, "app", appName, "application name for config/data path resolution")
	flags.BoolVar(&c.opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	flags.StringVar(&c.opts.apiURL, "api-url", "", "task API base URL")

	root.AddCommand(
		c.newServeCommand(),
		c.newListCommand(),
		c.newAddCommand(),
		c.newEditCommand(),
		c.newMoveCommand(),
		c.newRemoveCommand(),
		c.newPathsCommand(),
	)
	return root
}

// resolvePaths resolves config and data locations from the app and dev flags.
func (c *cli) resolvePaths() (platform.Paths, error) {
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName: c.opts.appName,
		DevMode: c.opts.devMode,
	})
}

// setup resolves configuration with flags over env over file over defaults and
// opens the runtime logger. tuiMode keeps the console sink muted.
func (c *cli) setup(command string, tuiMode bool) (*runtimeEnv, error) {
	paths, err := c.resolvePaths()
	if err != nil {
		return nil, err
	}
	if err := config.LoadDotEnv(paths.EnvPath); err != nil {
		return nil, err
	}

	configPath := strings.TrimSpace(c.opts.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(c.getenv(config.EnvConfig)); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(paths.DBPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	cfg, err = config.ApplyEnv(cfg, c.getenv)
	if err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}
	if v := strings.TrimSpace(c.opts.dbPath); v != "" {
		cfg.Database.Path = v
	}
	if v := strings.TrimSpace(c.opts.apiURL); v != "" {
		cfg.API.BaseURL = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	logger, err := newRuntimeLogger(c.stderr, c.opts.appName, c.opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if tuiMode {
		logger.SetConsoleEnabled(false)
	}

	logger.Info("startup configuration resolved", "app", c.opts.appName, "dev_mode", c.opts.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	logger.Info("configuration loaded", "config_path", configPath, "api_base_url", cfg.API.BaseURL, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}
	return &runtimeEnv{paths: paths, configPath: configPath, cfg: cfg, logger: logger}, nil
}

// close releases the dev-file sink.
func (c *cli) close(rt *runtimeEnv) {
	if closeErr := rt.logger.Close(); closeErr != nil && rt.logger.shouldLogToSink(rt.logger.consoleSink) {
		_, _ = fmt.Fprintf(c.stderr, "warning: close runtime log sink: %v\n", closeErr)
	}
}

// newClient builds the task API client from the resolved config.
func newClient(cfg config.Config) (*taskapi.Client, error) {
	client, err := taskapi.New(taskapi.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.APITimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("configure task api client: %w", err)
	}
	return client, nil
}

// newController wires a board controller to the API client.
func newController(rt *runtimeEnv, client board.TaskAPI, notifier board.Notifier) (*board.Controller, error) {
	policy, err := board.ParseReorderFailurePolicy(string(rt.cfg.Board.ReorderFailure))
	if err != nil {
		return nil, err
	}
	return board.New(client,
		board.WithNotifier(notifier),
		board.WithLogger(rt.logger),
		board.WithReorderFailurePolicy(policy),
	), nil
}

// runBoard runs the interactive board until the user quits.
func (c *cli) runBoard() error {
	rt, err := c.setup("tui", true)
	if err != nil {
		return err
	}
	defer c.close(rt)
	logger := rt.logger
	logger.Info("command flow start", "command", "tui")

	client, err := newClient(rt.cfg)
	if err != nil {
		logger.Error("command flow failed", "command", "tui", "err", err)
		return err
	}
	inbox := tui.NewInbox()
	ctrl, err := newController(rt, client, inbox)
	if err != nil {
		logger.Error("command flow failed", "command", "tui", "err", err)
		return err
	}
	m := tui.NewModel(ctrl, inbox,
		tui.WithTitle(client.BaseURL()),
		tui.WithToastDuration(rt.cfg.ToastDuration()),
		tui.WithShowDescription(rt.cfg.Board.ShowDescription),
	)

	logger.Info("starting tui program loop", "api_base_url", client.BaseURL(), "reorder_failure", string(rt.cfg.Board.ReorderFailure))
	if _, err := programFactory(m).Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}
