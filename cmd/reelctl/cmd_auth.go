package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/client"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/profile"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/session"
)

var (
	authEmail    string
	authPassword string
	authUsername string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Long: `Signs in and saves the session for later commands.

The password may be given with --password or REEL_PASSWORD.`,
	RunE: runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	RunE:  runLogout,
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "account email")
		c.Flags().StringVar(&authPassword, "password", "", "account password")
		_ = c.MarkFlagRequired("email")
	}
	signupCmd.Flags().StringVar(&authUsername, "username", "", "public username")
	_ = signupCmd.MarkFlagRequired("username")
}

func password() (string, error) {
	if authPassword != "" {
		return authPassword, nil
	}
	if p := os.Getenv("REEL_PASSWORD"); p != "" {
		return p, nil
	}
	return "", errors.New("password is required, use --password or REEL_PASSWORD")
}

func runLogin(cmd *cobra.Command, args []string) error {
	pw, err := password()
	if err != nil {
		return err
	}
	sess, err := client.SignIn(cmd.Context(), cfg, models.SignInRequest{
		Email:    strings.TrimSpace(authEmail),
		Password: pw,
	})
	if err != nil {
		return err
	}
	return finishAuth(cmd, sess)
}

func runSignup(cmd *cobra.Command, args []string) error {
	pw, err := password()
	if err != nil {
		return err
	}
	sess, err := client.SignUp(cmd.Context(), cfg, models.CreateUserRequest{
		Username: strings.TrimSpace(authUsername),
		Email:    strings.TrimSpace(authEmail),
		Password: pw,
	})
	if err != nil {
		return err
	}
	return finishAuth(cmd, sess)
}

func finishAuth(cmd *cobra.Command, sess *session.Session) error {
	if err := saveSession(sessionPath, sess); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as @%s\n", sess.User().Username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if errors.Is(err, errNoSession) {
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
		return nil
	}
	if err != nil {
		return err
	}
	agg := profile.NewAggregator(a.backend, a.sess, cfg, logger)
	if err := agg.SignOut(); err != nil {
		return err
	}
	if err := forgetSession(sessionPath); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}
