package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/fang"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/afrojun/zenhub-data-export/internal/config"
	"github.com/afrojun/zenhub-data-export/internal/export"
	"github.com/afrojun/zenhub-data-export/internal/export/jirasink"
	"github.com/afrojun/zenhub-data-export/internal/export/storage"
	"github.com/afrojun/zenhub-data-export/internal/flagutil"
	"github.com/afrojun/zenhub-data-export/internal/github"
	"github.com/afrojun/zenhub-data-export/internal/preview"
	"github.com/afrojun/zenhub-data-export/internal/zenhub"
)

var (
	configPath string
	flagConfig config.Export
	logLevel   string

	githubOptions = flagutil.NewTokenOptions("github", "GITHUB_TOKEN", github.DefaultEndpoint)
	zenhubOptions = flagutil.NewTokenOptions("zenhub", "ZENHUB_TOKEN", zenhub.DefaultEndpoint)
	jiraOptions   flagutil.JiraOptions
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logrus.WithError(err).Fatal("cannot load environment file")
	}

	rootCmd := &cobra.Command{
		Use:   "zenhub-export",
		Short: "Export ZenHub pipelines of GitHub repositories for import into Jira",
		Long: `ZenHub Export reconciles the ZenHub board of GitHub repositories with their issues
and writes one CSV file per repository and pipeline, ready for the Jira CSV importer.

1. Export: write the selected pipelines of all repositories (optionally creating Jira issues)
2. Preview: browse the rows of a single pipeline before exporting it
3. List: show previously exported files`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid --log-level: %w", err)
			}
			logrus.SetLevel(level)
			return nil
		},
	}

	// Add global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", fmt.Sprintf("Path to the config file (default %s, if it exists)", config.DefaultExportPath()))
	flags.StringVar(&flagConfig.Owner, "owner", "", "GitHub user or organization owning the repositories")
	flags.StringSliceVar(&flagConfig.Repositories, "repo", nil, "Repository to export; repeat to export several, in order")
	flags.StringArrayVar(&flagConfig.Pipelines, "pipeline", nil, "Full name of a ZenHub pipeline to export; repeat to export several")
	flags.StringVar(&flagConfig.OutputDir, "output-dir", "", "Directory for the exported files (default $XDG_DATA_HOME/zenhub-export/exports)")
	flags.StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	githubOptions.AddPFlags(flags)
	zenhubOptions.AddPFlags(flags)

	rootCmd.AddCommand(
		newExportCmd(),
		newPreviewCmd(),
		newListCmd(),
	)

	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		logrus.WithError(err).Fatal("command failed")
	}
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the selected pipelines of all repositories",
		Long: `Export every selected pipeline of every repository into <repo>_<pipeline>.csv.
Existing files are replaced. With --jira.project, a Jira issue is also created for every row.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context())
		},
	}

	jiraOptions.AddPFlags(cmd.Flags())

	return cmd
}

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <repo> <pipeline>",
		Short: "Browse the rows of a single pipeline",
		Long: `Fetch a single repository and show the rows its pipeline would export.
The pipeline may be given by its full or its bare name. Nothing is written.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd.Context(), args[0], args[1])
		},
	}

	return cmd
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List exported files",
		Long:  `List the files in the output directory.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList()
		},
	}

	return cmd
}

func loadConfig() (*config.Export, error) {
	cfg, err := config.LoadExport(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Override(flagConfig)

	if cfg.OutputDir == "" {
		cfg.OutputDir, err = config.ExportsDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine output directory: %w", err)
		}
	}

	return cfg, nil
}

func createService(owner string, sinks ...export.Sink) (*export.Service, error) {
	githubToken, err := githubOptions.Token()
	if err != nil {
		return nil, err
	}
	if githubToken == "" {
		logrus.Warn("No GitHub token configured, requests are subject to anonymous rate limits")
	}

	zenhubToken, err := zenhubOptions.RequiredToken()
	if err != nil {
		return nil, err
	}

	githubClient, err := github.NewClient(owner, githubToken, githubOptions.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("cannot create GitHub client: %w", err)
	}
	zenhubClient := zenhub.NewClient(zenhubOptions.Endpoint, zenhubToken)

	return export.NewService(githubClient, zenhubClient, sinks...), nil
}

// createSinks returns the CSV store, always the first sink, followed by the Jira sink if enabled
func createSinks(outputDir string, jira *flagutil.JiraOptions) (*storage.Store, []export.Sink, error) {
	store := storage.NewStore(outputDir)
	sinks := []export.Sink{store}
	if jira.Enabled() {
		jiraClient, err := jira.Client()
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, jirasink.NewSink(jiraClient, jira.Project))
	}
	return store, sinks, nil
}

func runExport(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	if err := jiraOptions.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	store, sinks, err := createSinks(cfg.OutputDir, &jiraOptions)
	if err != nil {
		return err
	}

	svc, err := createService(cfg.Owner, sinks...)
	if err != nil {
		return err
	}

	summary, err := svc.Export(ctx, export.Options{
		Repositories: cfg.Repositories,
		Pipelines:    cfg.PipelineSet(),
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	logrus.Infof("Exported %s rows into %d files in %s", humanize.Comma(int64(summary.TotalRows())), len(summary.Targets), store.GetDataDir())
	return nil
}

func runPreview(ctx context.Context, repo, pipeline string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Owner == "" {
		return fmt.Errorf("invalid options: --owner must be specified and nonempty")
	}

	svc, err := createService(cfg.Owner)
	if err != nil {
		return err
	}

	rows, err := svc.Rows(ctx, repo, pipeline)
	if err != nil {
		return fmt.Errorf("cannot preview pipeline: %w", err)
	}

	if len(rows) == 0 {
		fmt.Printf("No issues found in pipeline '%s' of '%s'\n", pipeline, repo)
		return nil
	}

	model := preview.NewModel(fmt.Sprintf("%s/%s: %s", cfg.Owner, repo, pipeline), rows)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("cannot run TUI: %w", err)
	}

	return nil
}

func runList() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := storage.NewStore(cfg.OutputDir)
	artifacts, err := store.List()
	if err != nil {
		return fmt.Errorf("cannot list exported files: %w", err)
	}

	if len(artifacts) == 0 {
		fmt.Printf("No exported files found in %s\n", store.GetDataDir())
		return nil
	}

	fmt.Printf("Exported files in %s:\n", store.GetDataDir())
	for _, artifact := range artifacts {
		fmt.Printf("  - %s (%s, exported %s)\n", artifact.Name, humanize.Bytes(uint64(artifact.Size)), humanize.Time(artifact.ModTime))
	}

	return nil
}
