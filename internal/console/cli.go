package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/client"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/logger"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/notify"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/table"
	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type configKey struct{}

var cfgFile string

// NewRootCmd creates the console root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "console",
		Short: "Browse back-office tables from the terminal",
		Long: `Console is a terminal client for the table API.

It pages through a resource with search, column filters, sorting and client status,
loading further pages as you scroll, and edits reference book rows.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if cfg.NoColor {
				color.NoColor = true
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./console.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "Table API base URL")
	rootCmd.PersistentFlags().Int("page-size", 0, "Rows per page")
	rootCmd.PersistentFlags().String("view", "", "Column view (TABLE|CARD|MAIN_TABLE)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warning|error)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	_ = rootCmd.RegisterFlagCompletionFunc("view", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"TABLE", "CARD", "MAIN_TABLE"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewBrowseCommand())
	rootCmd.AddCommand(NewColumnsCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewBrowseCommand creates the interactive browse command
func NewBrowseCommand() *cobra.Command {
	var height int

	cmd := &cobra.Command{
		Use:   "browse <resource>",
		Short: "Interactively browse a resource",
		Example: `  console browse /business-partner
  console browse /reference-book/calendar --view MAIN_TABLE`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			if cmd.Flags().Changed("height") {
				cfg.Height = height
			}
			return runBrowse(cmd, cfg, normalizeResource(args[0]))
		},
	}
	cmd.Flags().IntVar(&height, "height", 0, "Visible rows")
	return cmd
}

// NewColumnsCommand creates the command listing a resource's columns
func NewColumnsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <resource>",
		Short: "List the columns of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			view, ok := model.ParseViewKind(cfg.View)
			if !ok {
				return fmt.Errorf("invalid view %q", cfg.View)
			}

			api := newClient(cfg, newLogger(cfg, cmd.ErrOrStderr()))
			mapping, err := api.Columns(cmd.Context(), normalizeResource(args[0]), view)
			if err != nil {
				return err
			}
			RenderColumns(cmd.OutOrStdout(), table.TranslateColumns(mapping))
			return nil
		},
	}
}

func runBrowse(cmd *cobra.Command, cfg *Config, resource string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	view, ok := model.ParseViewKind(cfg.View)
	if !ok {
		return fmt.Errorf("invalid view %q", cfg.View)
	}
	status, ok := model.ParseClientStatus(cfg.Status)
	if !ok {
		return fmt.Errorf("invalid status %q", cfg.Status)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          resource + "> ",
		HistoryFile:     cfg.History,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	log := newLogger(cfg, rl.Stderr())
	api := newClient(cfg, log)

	notifier := notify.New(16)
	ch := notifier.Subscribe()
	defer notifier.Unsubscribe(ch)
	go PrintNotifications(ctx, rl.Stderr(), ch)

	ctrl := table.NewController(ctx, table.SessionConfig{
		Resource: resource,
		PageSize: cfg.PageSize,
		View:     view,
		Status:   status,
	}, api, api, notifier, log)
	defer ctrl.Close()

	b := NewBrowser(resource, ctrl, api, notifier, NewViewport(cfg.Height), rl.Stdout())

	_, _ = fmt.Fprintf(rl.Stdout(), "Browsing %s at %s\n", resource, cfg.BaseURL)
	_, _ = fmt.Fprintln(rl.Stdout(), "Type help for commands, quit to exit")
	if err := b.Start(ctx); err != nil {
		return err
	}

	keys := make([]string, 0)
	for _, c := range ctrl.Columns() {
		keys = append(keys, c.AccessorKey)
	}
	rl.Config.AutoComplete = newCompleter(keys)

	return RunREPL(ctx, b, rl)
}

func configFrom(cmd *cobra.Command) *Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*Config); ok {
		return cfg
	}
	cfg, err := LoadConfig("", nil)
	if err != nil {
		return &Config{BaseURL: "http://localhost:8080/api/v1", PageSize: table.DefaultPageSize, View: "TABLE", Status: "OPEN", Height: 15}
	}
	return cfg
}

func newClient(cfg *Config, log logrus.FieldLogger) *client.Client {
	return client.New(client.Options{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
		Logger:    log,
	})
}

func newLogger(cfg *Config, out io.Writer) *logrus.Logger {
	return logger.New(logger.Config{LogLevel: cfg.LogLevel}, out)
}

// normalizeResource turns "reference-book/calendar/" into "/reference-book/calendar"
func normalizeResource(resource string) string {
	return "/" + strings.Trim(strings.TrimSpace(resource), "/")
}
