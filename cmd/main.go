package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Akashdeep-Patra/content-manager/internal/app"
	"github.com/Akashdeep-Patra/content-manager/internal/common"
	"github.com/Akashdeep-Patra/content-manager/internal/config"
	"github.com/Akashdeep-Patra/content-manager/internal/content"
	"github.com/Akashdeep-Patra/content-manager/internal/controller"
	"github.com/Akashdeep-Patra/content-manager/internal/logging"
	"github.com/Akashdeep-Patra/content-manager/internal/realtime"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	// The console spends its time waiting on the terminal and the network;
	// two OS threads are plenty. An explicit GOMAXPROCS is respected.
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(min(runtime.NumCPU(), 2))
	}

	// Keep resident memory low when several consoles share a machine.
	debug.SetMemoryLimit(50 * 1024 * 1024) // 50 MiB
}

func main() {
	rootCmd := buildRootCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cmgr:", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cmgr",
		Short: "A terminal console for chatbot content",
		Long: `cmgr browses and edits the content served by a chatbot content service.

Items are grouped into categories, one per content type. The console pages
through them, searches, creates and edits items with a schema-driven form and
deletes them in bulk. Changes made elsewhere show up as they happen.

Run "cmgr serve" to start a content service backed by SQLite.`,
		RunE:          runApp,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"cmgr %s\n  commit:  %s\n  built:   %s\n  go:      %s\n  os/arch: %s/%s\n",
		version, commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH,
	))

	rootCmd.AddCommand(buildServeCmd())
	rootCmd.AddCommand(buildVersionCmd())
	rootCmd.AddCommand(buildCompletionCmd())

	rootCmd.Flags().StringP("url", "u", "", "Address of the content service (default from config)")

	return rootCmd
}

// buildVersionCmd creates the `cmgr version` subcommand supporting --json.
func buildVersionCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(_ *cobra.Command, _ []string) error {
			info := map[string]string{
				"version": version,
				"commit":  commit,
				"date":    date,
				"go":      runtime.Version(),
				"os":      runtime.GOOS,
				"arch":    runtime.GOARCH,
			}
			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Printf("cmgr %s\n", version)
			fmt.Printf("  commit:  %s\n", commit)
			fmt.Printf("  built:   %s\n", date)
			fmt.Printf("  go:      %s\n", runtime.Version())
			fmt.Printf("  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	return cmd
}

// buildCompletionCmd creates the `cmgr completion` subcommand for shell completions.
func buildCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for cmgr.

Examples:
  # Bash (add to ~/.bashrc)
  cmgr completion bash > /etc/bash_completion.d/cmgr

  # Zsh (add to ~/.zshrc before compinit)
  cmgr completion zsh > "${fpath[1]}/_cmgr"

  # Fish
  cmgr completion fish > ~/.config/fish/completions/cmgr.fish

  # PowerShell
  cmgr completion powershell > cmgr.ps1`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}

	return cmd
}

func runApp(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.Flag{Key: "base_url", Flag: cmd.Flags().Lookup("url")})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, closeLog, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	client, err := content.NewHTTPClient(cfg.BaseURL, cfg.RequestTimeout)
	if err != nil {
		return err
	}
	// Categories and schemas are read on nearly every command; a short TTL
	// dedupes them within one command. Mutations invalidate it.
	svc := content.NewCachedService(client, cfg.CacheTTL)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	ctl := controller.New(ctx, svc, controller.Options{PageSize: cfg.PageSize, Logger: logger})
	model := app.New(ctl, cfg)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	if cfg.Realtime {
		events := realtime.Subscribe(ctx, client.SocketURL(), cfg.RealtimeDebounce, logger)
		go func() {
			for range events {
				svc.Invalidate()
				p.Send(common.RefreshMsg{})
			}
		}()
	}

	logger.Info("console started", "base_url", cfg.BaseURL, "version", version)
	_, err = p.Run()
	return err
}
