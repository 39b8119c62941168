package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/pinshelf/pinshelf-server/internal/auth"
)

var tokenUser string

// tokenCmd issues an owner access token.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an owner access token",
	Long: `Signs a PASETO access token for the given owner with the server key in the
data directory. The key is generated on first use. Without --user a new owner
ID is minted and printed to stderr.

Example:
  pinctl token --user 4f0b8f3e-6c4e-4a47-9d1c-2f1f2a3b4c5d`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "Owner ID to embed in the token")
}

func runToken(cmd *cobra.Command, _ []string) error {
	userID := tokenUser
	if userID == "" {
		userID = uuid.NewString()
		fmt.Fprintf(cmd.ErrOrStderr(), "owner %s\n", userID)
	} else if _, err := uuid.Parse(userID); err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}

	return withContainer(func(i do.Injector) error {
		tokens, err := do.Invoke[*auth.TokenService](i)
		if err != nil {
			return err
		}

		token, expiresAt, err := tokens.GenerateAccessToken(userID)
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
		return nil
	})
}
