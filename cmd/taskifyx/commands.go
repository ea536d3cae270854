package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	serveradapter "github.com/hylla/taskifyx/internal/adapters/server"
	servercommon "github.com/hylla/taskifyx/internal/adapters/server/common"
	"github.com/hylla/taskifyx/internal/adapters/storage/sqlite"
	"github.com/hylla/taskifyx/internal/app"
	"github.com/hylla/taskifyx/internal/board"
	"github.com/hylla/taskifyx/internal/domain"
)

// cliNotifier writes controller notifications to stderr so stdout stays scriptable.
type cliNotifier struct {
	w io.Writer
}

// Notify implements board.Notifier.
func (n cliNotifier) Notify(kind board.NoticeKind, message string) {
	_, _ = fmt.Fprintf(n.w, "%s: %s\n", kind, message)
}

// withController runs fn against a controller wired to the configured API and
// logs the command flow around it.
func (c *cli) withController(command string, fn func(*board.Controller) error) error {
	rt, err := c.setup(command, false)
	if err != nil {
		return err
	}
	defer c.close(rt)
	logger := rt.logger

	logger.Info("command flow start", "command", command)
	client, err := newClient(rt.cfg)
	if err != nil {
		logger.Error("command flow failed", "command", command, "err", err)
		return err
	}
	ctrl, err := newController(rt, client, cliNotifier{w: c.stderr})
	if err != nil {
		logger.Error("command flow failed", "command", command, "err", err)
		return err
	}
	if err := fn(ctrl); err != nil {
		logger.Error("command flow failed", "command", command, "err", err)
		return fmt.Errorf("run %s command: %w", command, err)
	}
	logger.Info("command flow complete", "command", command)
	return nil
}

// loadTask loads the board and returns the task with id.
func loadTask(ctx context.Context, ctrl *board.Controller, id string) (domain.Task, error) {
	if err := ctrl.Load(ctx); err != nil {
		return domain.Task{}, fmt.Errorf("load tasks: %w", err)
	}
	task, ok := ctrl.Task(id)
	if !ok {
		return domain.Task{}, fmt.Errorf("task %q: %w", id, app.ErrNotFound)
	}
	return task, nil
}

func (c *cli) newServeCommand() *cobra.Command {
	var (
		httpBind        string
		apiEndpoint     string
		mcpEndpoint     string
		metricsEndpoint string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference task API server (REST, MCP, metrics)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := c.setup("serve", false)
			if err != nil {
				return err
			}
			defer c.close(rt)
			logger := rt.logger
			cfg := rt.cfg

			logger.Info("command flow start", "command", "serve")
			logger.Info("opening sqlite repository", "db_path", cfg.Database.Path)
			repo, err := sqlite.Open(cfg.Database.Path)
			if err != nil {
				logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
				return fmt.Errorf("open sqlite repository: %w", err)
			}
			defer func() {
				if closeErr := repo.Close(); closeErr != nil {
					logger.Warn("sqlite close failed", "db_path", cfg.Database.Path, "err", closeErr)
				}
			}()
			logger.Info("sqlite repository ready", "db_path", cfg.Database.Path, "migrations", "ensured")

			svc := app.NewService(repo, uuid.NewString, nil)
			serverCfg := serveradapter.Config{
				HTTPBind:        firstNonEmpty(httpBind, cfg.Server.HTTPBind),
				APIEndpoint:     firstNonEmpty(apiEndpoint, cfg.Server.APIEndpoint),
				MCPEndpoint:     firstNonEmpty(mcpEndpoint, cfg.Server.MCPEndpoint),
				MetricsEndpoint: firstNonEmpty(metricsEndpoint, cfg.Server.MetricsEndpoint),
				ServerName:      c.opts.appName,
				ServerVersion:   version,
			}
			err = serveCommandRunner(cmd.Context(), serverCfg, serveradapter.Dependencies{
				Tasks:  servercommon.NewAppServiceAdapter(svc),
				Logger: logger,
			})
			if err != nil {
				logger.Error("command flow failed", "command", "serve", "err", err)
				return fmt.Errorf("run serve command: %w", err)
			}
			logger.Info("command flow complete", "command", "serve")
			return nil
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "", "HTTP listen address (default from config)")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "REST API base endpoint (default from config)")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "", "MCP streamable HTTP endpoint (default from config)")
	cmd.Flags().StringVar(&metricsEndpoint, "metrics-endpoint", "", "Prometheus metrics endpoint (default from config)")
	return cmd
}

func (c *cli) newListCommand() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in board order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter domain.Status
			if strings.TrimSpace(status) != "" {
				parsed, err := domain.ParseStatus(status)
				if err != nil {
					return fmt.Errorf("--status %q: %w", status, err)
				}
				filter = parsed
			}
			return c.withController("list", func(ctrl *board.Controller) error {
				if err := ctrl.Load(cmd.Context()); err != nil {
					return err
				}
				tasks := ctrl.Tasks()
				if filter != "" {
					tasks = domain.TasksWithStatus(tasks, filter)
				}
				_, err := fmt.Fprintln(c.stdout, renderTaskTable(tasks))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only show one column (todo, in-progress, done)")
	return cmd
}

func (c *cli) newAddCommand() *cobra.Command {
	var title, description, status string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := domain.ParseStatus(status)
			if err != nil {
				return fmt.Errorf("--status %q: %w", status, err)
			}
			if strings.TrimSpace(title) == "" {
				return fmt.Errorf("--title: %w", domain.ErrInvalidTitle)
			}
			return c.withController("add", func(ctrl *board.Controller) error {
				created, err := ctrl.Create(cmd.Context(), domain.TaskDraft{
					Title:       strings.TrimSpace(title),
					Description: strings.TrimSpace(description),
					Status:      parsed,
				})
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(c.stdout, created.ID)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "task title")
	cmd.Flags().StringVar(&description, "description", "", "task description (markdown)")
	cmd.Flags().StringVar(&status, "status", string(domain.StatusTodo), "initial column")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (c *cli) newEditCommand() *cobra.Command {
	var title, description, status string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a task's title, description, or status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("title") && !flags.Changed("description") && !flags.Changed("status") {
				return fmt.Errorf("nothing to edit: pass --title, --description, or --status")
			}
			return c.withController("edit", func(ctrl *board.Controller) error {
				task, err := loadTask(cmd.Context(), ctrl, args[0])
				if err != nil {
					return err
				}
				if flags.Changed("title") {
					if strings.TrimSpace(title) == "" {
						return fmt.Errorf("--title: %w", domain.ErrInvalidTitle)
					}
					task.Title = strings.TrimSpace(title)
				}
				if flags.Changed("description") {
					task.Description = strings.TrimSpace(description)
				}
				if flags.Changed("status") {
					parsed, err := domain.ParseStatus(status)
					if err != nil {
						return fmt.Errorf("--status %q: %w", status, err)
					}
					task.Status = parsed
				}
				updated, err := ctrl.Update(cmd.Context(), task)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(c.stdout, renderTaskTable([]domain.Task{updated}))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&status, "status", "", "new column")
	return cmd
}

func (c *cli) newMoveCommand() *cobra.Command {
	var to string
	var index int
	cmd := &cobra.Command{
		Use:   "move ID",
		Short: "Move a task to another column or position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, err := domain.ParseStatus(to)
			if err != nil {
				return fmt.Errorf("--to %q: %w", to, err)
			}
			return c.withController("move", func(ctrl *board.Controller) error {
				if _, err := loadTask(cmd.Context(), ctrl, args[0]); err != nil {
					return err
				}
				drag, err := dragFor(ctrl.Tasks(), args[0], dest, index)
				if err != nil {
					return err
				}
				if !drag.Moves() {
					_, err := fmt.Fprintln(c.stdout, "task already in place")
					return err
				}
				return ctrl.Reorder(cmd.Context(), drag)
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "destination column")
	cmd.Flags().IntVar(&index, "index", -1, "position within the destination column (-1 appends)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// dragFor builds the drag result that moves task id to index within dest. A
// negative index appends after the last task of dest.
func dragFor(tasks []domain.Task, id string, dest domain.Status, index int) (domain.DragResult, error) {
	source, ok := domain.PositionOf(tasks, id)
	if !ok {
		return domain.DragResult{}, fmt.Errorf("task %q: %w", id, app.ErrNotFound)
	}
	if index < 0 {
		index = len(domain.TasksWithStatus(tasks, dest))
		if source.Column == dest {
			index--
		}
	}
	return domain.DragResult{
		Source:      source,
		Destination: &domain.Position{Column: dest, Index: index},
	}, nil
}

func (c *cli) newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withController("rm", func(ctrl *board.Controller) error {
				return ctrl.Delete(cmd.Context(), args[0])
			})
		},
	}
}

func (c *cli) newPathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := c.resolvePaths()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(c.stdout, "app: %s\n", c.opts.appName)
			_, _ = fmt.Fprintf(c.stdout, "dev_mode: %t\n", c.opts.devMode)
			_, _ = fmt.Fprintf(c.stdout, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(c.stdout, "env: %s\n", paths.EnvPath)
			_, _ = fmt.Fprintf(c.stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(c.stdout, "db: %s\n", paths.DBPath)
			return nil
		},
	}
}

// renderTaskTable renders tasks as a bordered table in list order.
func renderTaskTable(tasks []domain.Task) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("ID", "Title", "Status", "Description").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, task := range tasks {
		t.Row(task.ID, task.Title, string(task.Status), summarize(task.Description, 48))
	}
	return t.Render()
}

// summarize returns the first line of s, cut to limit runes.
func summarize(s string, limit int) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = strings.TrimSpace(s[:idx])
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit-1]) + "…"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
