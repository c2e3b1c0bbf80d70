package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/reelcat/internal/api"
	"github.com/vmunix/reelcat/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the backend",
	Long: `Sign in and store the session token locally.

The password is read from --password, or from the first line of stdin.

Examples:
  reelcat login --username alice
  echo "$PASSWORD" | reelcat login --username alice`,
	Args: cobra.NoArgs,
	RunE: runLoginCmd,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogoutCmd,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoamiCmd,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().StringP("username", "u", "", "Username")
	loginCmd.Flags().StringP("password", "p", "", "Password (default: read from stdin)")
	_ = loginCmd.MarkFlagRequired("username")
}

func runLoginCmd(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	if password == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		var err error
		password, err = readLine(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		return login(ctx, a, username, password)
	})
}

func login(ctx context.Context, a *app, username, password string) error {
	u, err := a.catalog.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return fmt.Errorf("login failed: incorrect username or password")
		}
		return fmt.Errorf("login failed: %w", err)
	}
	if jsonOutput {
		return printJSON(a.out, u)
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", displayName(u), u.Role)
	return nil
}

func runLogoutCmd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.catalog.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Signed out.")
		return nil
	})
}

func runWhoamiCmd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, whoami)
}

func whoami(_ context.Context, a *app) error {
	u, ok := a.session.User()
	if !ok {
		return fmt.Errorf("not signed in, run 'reelcat login'")
	}
	if jsonOutput {
		return printJSON(a.out, u)
	}
	fmt.Fprintf(a.out, "%s (id %d, role %s)\n", displayName(u), u.ID, u.Role)
	return nil
}

func displayName(u session.User) string {
	for _, s := range []string{u.Name, u.Login, u.Email} {
		if s != "" {
			return s
		}
	}
	return "unknown user"
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
