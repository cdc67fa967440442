package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finboard/internal/cli"
	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/session"
)

func loginCmd() *cobra.Command {
	var idToken string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with Google",
		Long: `Sign in with your Google account. The browser flow needs google.client_id and
google.client_secret; alternatively pass an ID token you already have with --id-token
(or "-" to read it from stdin).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if idToken == "-" {
				line, err := cli.NewNonBlockingReader(os.Stdin).ReadLine(ctx)
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}
				idToken = line
			}

			if idToken == "" {
				if !a.cfg.HasGoogleClient() {
					return common.NewUserError(
						"Google sign-in is not configured. Set google.client_id and google.client_secret or use --id-token.",
						common.ErrMissingConfig)
				}
				idToken, err = session.GoogleSignIn(ctx, a.cfg.Google.ClientID, a.cfg.Google.ClientSecret, a.cfg.Google.CallbackPort,
					func(url string) {
						fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Open this URL to sign in:"))
						fmt.Fprintln(cmd.OutOrStdout(), url)
					})
				if err != nil {
					return fmt.Errorf("google sign-in failed: %w", err)
				}
			}

			id, err := a.session.SignIn(ctx, strings.TrimSpace(idToken))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Signed in as %s (%s)", id.Name, id.Email)))
			return nil
		},
	}

	cmd.Flags().StringVar(&idToken, "id-token", "", "use this Google ID token instead of the browser flow")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if _, ok := a.session.Current(); !ok {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Not signed in."))
				return nil
			}
			if err := a.session.SignOut(cmd.Context()); err != nil {
				return fmt.Errorf("failed to sign out: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Signed out."))
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			id, ok := a.session.Current()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Not signed in. Run `finboard login`."))
				return nil
			}
			content := fmt.Sprintf("%s %s\n%s %s\n%s %s",
				cli.BoldStyle.Render("Name:   "), id.Name,
				cli.BoldStyle.Render("Email:  "), id.Email,
				cli.BoldStyle.Render("Backend:"), a.client.BaseURL())
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(cli.ProfileIcon+" Signed in", content))
			return nil
		},
	}
}
