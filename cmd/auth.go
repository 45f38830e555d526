package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/teemow/flowspace/internal/google"
)

func newAuthCmd() *cobra.Command {
	var authCode string

	cmd := &cobra.Command{
		Use:   "auth [account]",
		Short: "Authorize a Google account",
		Long: `Authorize a Google account for use by tasks and triggers.

Without --code, prints the Google OAuth consent URL for the account.
Open it in a browser, approve the requested scopes and copy the
authorization code, then run the command again with --code to exchange
it for a token. Tokens are cached per account; the account name defaults
to "default".

GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set, either in the
environment or in a .env file in the working directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			account := "default"
			if len(args) == 1 {
				account = args[0]
			}

			if authCode == "" {
				if google.HasTokenForAccount(account) {
					fmt.Fprintf(cmd.OutOrStdout(), "Account %q is already authorized. Re-authorize with:\n\n", account)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Open the following URL in a browser and approve access:\n\n  %s\n\n", google.GetAuthURLForAccount(account))
				fmt.Fprintf(cmd.OutOrStdout(), "Then run: flowspace auth %s --code <authorization-code>\n", account)
				return nil
			}

			if err := google.SaveTokenForAccount(cmd.Context(), account, authCode); err != nil {
				return fmt.Errorf("failed to authorize account %s: %w", account, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %q authorized.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&authCode, "code", "", "Authorization code from the Google consent page")

	return cmd
}
