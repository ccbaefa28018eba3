package cmd

import (
	"time"

	"github.com/habedi/sbanken/pkg/clierr"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// authCmd obtains an access token, reusing the persisted one while it is valid, or forgets it.
func authCmd() *cobra.Command {
	var logout bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with the identity server using the client credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveSettings(cmd.Context())
			if err != nil {
				return err
			}
			c, cache := newBankClient(cfg)

			if logout {
				if err := cache.Clear(); err != nil {
					return clierr.New(clierr.Internal, "Failed to remove the stored access token.", err)
				}
				cmd.Println("Stored access token removed.")
				return nil
			}

			log.Info().Msg("Trying to authenticate with the identity server")
			token, err := c.Token(cmd.Context())
			if err != nil {
				return tokenError(err)
			}

			cmd.Println("Authentication was successful.")
			cmd.Printf("Token type: %s\n", token.TokenType)
			cmd.Printf("Expires at: %s\n", token.ExpiryDate().Local().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().BoolVar(&logout, "logout", false, "Remove the stored access token instead of fetching one")

	return cmd
}
