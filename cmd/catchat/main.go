package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"catchat/cmd/catchat/tui"
	"catchat/internal/catapi"
	"catchat/internal/chat"
	"catchat/internal/config"
	"catchat/internal/logging"
	"catchat/internal/session"
)

var (
	baseURLFlag string
	verboseFlag bool

	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "catchat",
	Short: "Terminal multi-chat client for the Cheshire Cat API",
	Long: `catchat is a terminal client for the Cheshire Cat conversational agent.

Log in, manage named chats (create, rename, delete) and talk to the cat
from your terminal. The API base URL is taken from --base-url, the
BASE_URL environment variable (a .env file is honored), or the config
file, in that order.`,
	RunE: runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the catchat version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "Cheshire Cat API base URL")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose logging")
	rootCmd.AddCommand(versionCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Load .env if present, same as the original deployment setup.
	_ = godotenv.Load()

	mgr, err := config.NewManager()
	if err != nil {
		return err
	}
	cfg, err := mgr.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logging.New(mgr.Dir(), verboseFlag || cfg.Verbose)
	defer log.Sync()

	baseURL := config.ResolveBaseURL(baseURLFlag, cfg, catapi.DefaultBaseURL)
	log.Info("starting catchat", zap.String("base_url", baseURL), zap.String("version", version))

	client := catapi.New(baseURL, log)
	sess := &session.Session{}
	ops := chat.NewOps(client, sess, log)

	p := tea.NewProgram(tui.New(ops), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("ui error: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
