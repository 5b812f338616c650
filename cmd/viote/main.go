package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/sohanasz/viote/internal"
	"github.com/sohanasz/viote/internal/client"
	"github.com/sohanasz/viote/internal/editor"
	"github.com/sohanasz/viote/internal/markdown"
	pkgconfig "github.com/sohanasz/viote/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithVersion(version),
		internal.WithLogOutput(os.Stderr),
	)
}

// push saves a Markdown file as a note through a running server, using the
// same editor session flow as an interactive client.
func push(ctx context.Context, cmd *cli.Command) error {
	file := cmd.Args().First()
	if file == "" {
		return errors.New("push: a Markdown file is required")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	res, err := markdown.Parse(data)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}

	project := cmd.String("project")
	if project == "" {
		project = res.Project
	}
	title := res.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	c := newClient(cmd)
	session := editor.New(c,
		editor.WithProject(project),
		editor.WithNote(cmd.String("note"), title, res.Content),
		editor.WithLogger(logger),
		editor.WithNotifier(editor.NotifierFunc(func(title, message string) {
			fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
		})),
	)
	if err := session.Save(ctx); err != nil {
		return err
	}
	fmt.Println(session.NoteID())
	return nil
}

func newClient(cmd *cli.Command) *client.Client {
	return client.New(cmd.String("server"),
		client.WithToken(cmd.String("token")),
		client.WithHTTPClient(&http.Client{Timeout: cmd.Duration("timeout")}),
	)
}

// pull prints a stored note as Markdown.
func pull(ctx context.Context, cmd *cli.Command) error {
	c := newClient(cmd)
	n, err := c.GetNote(ctx, cmd.String("project"), cmd.String("note"))
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	out, err := markdown.Render(n.Title, n.Content)
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
	serverFlag := &cli.StringFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Base URL of the Viote server",
		Value:   "http://localhost:8080",
		Sources: cli.EnvVars("VIOTE_SERVER"),
	}
	tokenFlag := &cli.StringFlag{
		Name:    "token",
		Usage:   "Bearer token when the server has auth enabled",
		Sources: cli.EnvVars("VIOTE_TOKEN"),
	}
	timeoutFlag := &cli.DurationFlag{
		Name:  "timeout",
		Usage: "HTTP request timeout",
		Value: 30 * time.Second,
	}

	cmd := &cli.Command{
		Name:    "viote",
		Usage:   "Block-based notes organised by project, with a REST API and MCP tools",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, event stream and Markdown inbox",
				Flags:  []cli.Flag{configFlag},
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Flags:  []cli.Flag{configFlag},
				Action: serveMCP,
			},
			{
				Name:      "push",
				Usage:     "Save a Markdown file as a note",
				ArgsUsage: "<file.md>",
				Flags: []cli.Flag{
					serverFlag,
					tokenFlag,
					timeoutFlag,
					&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Project ID (defaults to the frontmatter project)"},
					&cli.StringFlag{Name: "note", Aliases: []string{"n"}, Usage: "Update this note instead of creating one"},
				},
				Action: push,
			},
			{
				Name:  "pull",
				Usage: "Print a note as Markdown",
				Flags: []cli.Flag{
					serverFlag,
					tokenFlag,
					timeoutFlag,
					&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Required: true},
					&cli.StringFlag{Name: "note", Aliases: []string{"n"}, Required: true},
				},
				Action: pull,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
