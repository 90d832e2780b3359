package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/postr/internal/config"
	"github.com/pders01/postr/internal/debuglog"
	"github.com/pders01/postr/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

type globalFlags struct {
	configPath string
	cachePath  string
	baseURL    string
	feedURL    string
	logLevel   string
	quiet      bool
	allowLocal bool
}

var flags globalFlags

var rootCmd = &cobra.Command{
	Use:   "postr",
	Short: "Browse, search and edit posts from a JSON API or a feed",
	Long: `postr lists posts and users from a JSONPlaceholder-style REST API,
or from an RSS/Atom/JSON feed, with debounced search, user filtering,
pagination and an on-disk cache.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		var out io.Writer = os.Stdout
		if cmd != nil {
			out = cmd.OutOrStdout()
		}
		fmt.Fprintf(out, "postr %s\n", Version)
		fmt.Fprintln(out, "posts & users browser")
		fmt.Fprintln(out, "github.com/pders01/postr")
	},
}

var generateConfigCmd = &cobra.Command{
	Use:   "generate-config [path]",
	Short: "Write the default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile := defaultConfigFile()
		if len(args) == 1 {
			configFile = args[0]
		}
		if err := config.GenerateDefaultConfig(configFile); err != nil {
			return fmt.Errorf("failed to generate config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", configFile)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to configuration file")
	pf.StringVar(&flags.cachePath, "cache", "", "Path to cache database (overrides config)")
	pf.StringVar(&flags.baseURL, "base-url", "", "REST API base URL (overrides config)")
	pf.StringVar(&flags.feedURL, "feed", "", "Read posts from this RSS/Atom/JSON feed instead of the API")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error, off")
	pf.BoolVar(&flags.quiet, "quiet", false, "Skip startup banner")
	pf.BoolVar(&flags.allowLocal, "allow-local", false, "Allow localhost and private network URLs")

	rootCmd.AddCommand(versionCmd, generateConfigCmd, postsCmd, usersCmd, exportCmd, clearCacheCmd)
}

func defaultConfigFile() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "postr", "config.toml")
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if flags.cachePath != "" {
		cfg.Cache.Path = flags.cachePath
	}
	if flags.baseURL != "" {
		cfg.API.BaseURL = flags.baseURL
	}
	if flags.feedURL != "" {
		cfg.Source.Kind = config.SourceFeed
		cfg.Source.FeedURL = flags.feedURL
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}
	return cfg, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer debuglog.Close()

	if !flags.quiet {
		tui.ShowBanner(Version)
	}

	rt, err := openRuntime(cfg, flags.allowLocal, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	app := tui.NewApp(cfg, rt.deps())
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
