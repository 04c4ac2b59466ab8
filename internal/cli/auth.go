/*
PURPOSE:
  Defines the 'auth' subcommand: the standalone device authorization
  flow. Prints the verification URL and user code, waits for approval,
  confirms where the token landed.

REQUIREMENTS:
  User-specified:
  - The user code must be impossible to miss; copy it to the clipboard
    when the platform allows.
  - Ctrl-C while polling exits cleanly without touching any previously
    saved token.

  Implementation-discovered:
  - Clipboard access fails on headless boxes; that is informational,
    not an error.

ARCHITECTURE INTEGRATION:
  - Calls: internal/auth
  - Uses: internal/config, internal/output

ERROR HANDLING:
  - Flow failures (expired, denied, network) surface as command errors
    with the reason in the text.

IMPLEMENTATION RULES:
  - All interactive text goes through internal/output so run --share
    reuses the identical prompt.

USAGE:
  burnbench auth

RELATED FILES:
  - internal/auth/device.go
  - internal/auth/manager.go

MAINTENANCE:
  - Keep the prompt wording in sync with the results service docs.
*/

package cli

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/apertureless/burnbench/internal/auth"
	"github.com/apertureless/burnbench/internal/config"
	"github.com/apertureless/burnbench/internal/output"
)

// newAuthManager wires an auth manager with the interactive prompt.
// Both the auth command and run --share go through this.
func newAuthManager(cfg *config.Config) *auth.Manager {
	flowCfg := auth.FlowConfig{
		ClientID:      cfg.Auth.ClientID,
		Scope:         cfg.Auth.Scope,
		DeviceCodeURL: cfg.Auth.DeviceCodeURL,
		TokenURL:      cfg.Auth.TokenURL,
		UserAgent:     cfg.UserAgent,
		OnSession: func(s auth.Session) {
			copied := clipboard.WriteAll(s.UserCode) == nil
			output.AuthPrompt(s.VerificationURI, s.UserCode, copied)
		},
	}
	store := auth.NewStore(cfg.CacheDir, cfg.Auth.ClientID)
	return auth.NewManager(flowCfg, cfg.Auth.APIURL, store)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with the shared results service",
	Long: `Runs the OAuth device authorization flow against the identity provider
and persists the obtained token locally. Sharing benchmark reports with
'run --share' requires this once (tokens are refreshed automatically
while a refresh credential is valid).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		mgr := newAuthManager(cfg)
		if _, err := mgr.Authenticate(cmd.Context()); err != nil {
			return err
		}

		fmt.Println("✅ Successfully authenticated!")
		fmt.Printf("Token saved to %s\n", mgr.Store().Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}
