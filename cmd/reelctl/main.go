package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/client"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/mutation"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/session"
	"github.com/Anthony-Yangg/reel-royale2-sub001/pkg/config"
)

var (
	// Global flags
	configPath  string
	sessionPath string
	verbose     bool

	cfg    *config.ClientConfig
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reelctl",
	Short: "Command line client for Reel Royale",
	Long: `reelctl signs in to a Reel Royale API and drives the feed, posts,
likes, follows, comments and profiles from a terminal.

The API address comes from the config file, or REEL_API_URL.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env := "production"
		if verbose {
			env = "development"
		}
		var err error
		logger, err = config.NewLogger(env)
		if err != nil {
			return err
		}
		cfg, err = config.LoadClient(configPath)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	home, _ := os.UserHomeDir()
	defaultDir := filepath.Join(home, ".reelctl")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", filepath.Join(defaultDir, "config.yaml"), "client config file")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", filepath.Join(defaultDir, "session.yaml"), "saved session file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd)
	rootCmd.AddCommand(feedCmd, showCmd, postCmd, likeCmd, followCmd, unfollowCmd, commentCmd)
	rootCmd.AddCommand(profileCmd)
}

// app is the signed in client state shared by one command.
type app struct {
	sess       *session.Session
	backend    *client.HTTPBackend
	dispatcher *mutation.Dispatcher
}

func openApp() (*app, error) {
	sess, err := loadSession(sessionPath)
	if err != nil {
		return nil, err
	}
	backend := client.New(cfg, sess)
	return &app{
		sess:       sess,
		backend:    backend,
		dispatcher: mutation.New(backend, sess, cfg, logger),
	}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
