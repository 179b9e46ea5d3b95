package cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rosettacloud/shellchat/pkg/tokens"
)

var (
	tokenEndpoint string
	tokenUserID   string
	tokenCache    string
	tokenExpiry   int
	tokenScope    string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Vend a disposable pub/sub token",
	Long: `Requests a disposable bearer token from the token-vending endpoint and
prints it to stdout. Tokens are scoped to one cache and expire after at most
an hour.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := tokenEndpoint
		userID := tokenUserID
		cache := tokenCache
		if configPath != "" {
			if cfg, err := loadConfig(cmd); err == nil {
				if endpoint == "" {
					endpoint = cfg.TokenEndpoint
				}
				if userID == "" {
					userID = cfg.UserID
				}
				if cache == "" {
					cache = cfg.CacheName
				}
			}
		}

		tc, err := tokens.NewClient(endpoint)
		if err != nil {
			return err
		}
		tok, err := tc.Vend(cmd.Context(), tokens.VendRequest{
			UserID:        userID,
			CacheName:     cache,
			ExpiryMinutes: tokenExpiry,
			Scope:         tokenScope,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEndpoint, "endpoint", "", "Token-vending endpoint URL")
	tokenCmd.Flags().StringVar(&tokenUserID, "user-id", "", "User the token is issued for")
	tokenCmd.Flags().StringVar(&tokenCache, "cache", "", "Cache the token is scoped to")
	tokenCmd.Flags().IntVar(&tokenExpiry, "expiry", 0, "Token lifetime in minutes (1-60, default 30)")
	tokenCmd.Flags().StringVar(&tokenScope, "scope", tokens.ScopeBoth, "Token scope (subscribe|publish|both)")
	rootCmd.AddCommand(tokenCmd)
}
