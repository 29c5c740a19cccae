package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	schedapi "github.com/kilianp07/minesched/api/schedule"
	"github.com/kilianp07/minesched/app/plugins"
)

var tokenOpts struct {
	subject string
	ttl     time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token signed with server.jwt_secret",
	RunE:  runToken,
}

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List the module types available in configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(plugins.Available())
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenOpts.subject, "subject", "planner", "token subject")
	tokenCmd.Flags().DurationVar(&tokenOpts.ttl, "ttl", 12*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd, pluginsCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Server.JWTSecret == "" {
		return errors.New("server.jwt_secret is not configured")
	}
	tok, err := schedapi.IssueToken([]byte(cfg.Server.JWTSecret), tokenOpts.subject, tokenOpts.ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
