package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/career-portal/internal/types"
	"github.com/spf13/cobra"
)

// readPassword returns the --password value, or the first line of stdin
// when --password-stdin is set.
func readPassword(in io.Reader, flagValue string, fromStdin bool) (string, error) {
	if !fromStdin {
		return flagValue, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var (
		req           types.RegisterRequest
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd.InOrStdin(), req.Password, passwordStdin)
			if err != nil {
				return err
			}
			req.Password = password
			if err := req.Validate(); err != nil {
				return fmt.Errorf("invalid registration: %w", err)
			}

			return withApp(cmd, opts, func(a *app) error {
				if err := a.client.Register(cmd.Context(), req); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(a.out, "Account %s created. Run 'portal login' to sign in.\n", req.Username)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "Username")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "Password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
	return cmd
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var (
		req           types.LoginRequest
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and show your dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd.InOrStdin(), req.Password, passwordStdin)
			if err != nil {
				return err
			}
			req.Password = password
			if err := req.Validate(); err != nil {
				return fmt.Errorf("invalid login: %w", err)
			}

			return withApp(cmd, opts, func(a *app) error {
				ctx := cmd.Context()
				token, err := a.client.Login(ctx, req)
				if err != nil {
					return err
				}

				// Stored first so Start loads only the new credential.
				if err := a.store.Login(ctx, token.AccessToken); err != nil {
					return err
				}
				a.orch.Start(ctx)
				_, _ = fmt.Fprintf(a.out, "Signed in as %s.\n", req.Username)
				a.printer.PrintView(a.orch.View())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "Password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	_ = cmd.MarkFlagRequired("username")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if err := a.store.Logout(cmd.Context()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(a.out, "Signed out.")
				return nil
			})
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who is signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if _, err := a.credential(); err != nil {
					_, _ = fmt.Fprintln(a.out, "Not signed in.")
					return nil
				}

				claims, ok := a.store.Claims()
				if !ok {
					_, _ = fmt.Fprintln(a.out, "Signed in.")
					return nil
				}
				_, _ = fmt.Fprintf(a.out, "Signed in as %s", claims.Subject)
				if !claims.ExpiresAt.IsZero() {
					_, _ = fmt.Fprintf(a.out, " (session expires %s)", claims.ExpiresAt.Local().Format(time.RFC1123))
				}
				_, _ = fmt.Fprintln(a.out)
				return nil
			})
		},
	}
}
