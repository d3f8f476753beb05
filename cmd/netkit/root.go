package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user/netkit/internal/probes"
	"github.com/user/netkit/internal/storage"
	"github.com/user/netkit/internal/toolkit"
	"github.com/user/netkit/internal/util"
)

var (
	cfgFile   string
	cfg       *util.Config
	query     string
	noHistory bool
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "netkit",
	Short: "Network diagnostics toolkit",
	Long: `netkit runs one-shot network diagnostics:
- ping, traceroute and WHOIS through the system tools
- TCP port scans and subnet host discovery
- DNS, reverse DNS, TLS certificate and HTTP header inspection
- subnet arithmetic, Wake-on-LAN and local interface listing

Results print as text, JSON, YAML or Markdown and are kept in a local
history journal unless --no-history is given.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.netkit/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("output", "o", "text",
		"output format (text, json, yaml, markdown)")
	rootCmd.PersistentFlags().StringVarP(&query, "query", "q", "",
		"jq expression applied to the JSON result")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false,
		"do not record this run in the history journal")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))

	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(dnsCmd)
	rootCmd.AddCommand(rdnsCmd)
	rootCmd.AddCommand(certCmd)
	rootCmd.AddCommand(headersCmd)
	rootCmd.AddCommand(whoisCmd)
	rootCmd.AddCommand(subnetCmd)
	rootCmd.AddCommand(wolCmd)
	rootCmd.AddCommand(ifacesCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	// Add shell completion
	rootCmd.AddCommand(completionCmd)
}

func initConfig() error {
	var err error
	cfg, err = util.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	util.InitLogger(cfg.LogLevel, cfg.LogFile)
	return nil
}

// newToolkit builds the toolkit and, when history is enabled, opens the
// journal and records every result into it. The returned func closes the
// journal.
func newToolkit() (*toolkit.Toolkit, *storage.HistoryStorage, func()) {
	tk := toolkit.New(cfg, probes.NewCommandResolver())
	if noHistory || !cfg.HistoryEnabled {
		return tk, nil, func() {}
	}

	history, closeDB, err := openHistory()
	if err != nil {
		util.Warn("History disabled: %v", err)
		return tk, nil, func() {}
	}
	tk.SetRecorder(toolkit.JournalRecorder(history))
	return tk, history, closeDB
}

func openHistory() (*storage.HistoryStorage, func(), error) {
	if err := util.EnsureDir(cfg.DataDir); err != nil {
		return nil, nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := storage.Initialize(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			util.Warn("Failed to close database: %v", err)
		}
	}
	return storage.NewHistoryStorage(db), closeDB, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("netkit version " + toolkit.Version)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for netkit.

To load completions:

Bash:
  $ source <(netkit completion bash)

Zsh:
  $ source <(netkit completion zsh)

Fish:
  $ netkit completion fish | source

PowerShell:
  PS> netkit completion powershell | Out-String | Invoke-Expression
`,
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
		default:
			return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}
