package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:   "menu-api",
		Short: "Menu resource server protected by OAuth2 bearer tokens",
		Long: `
Usage: menu-api [command]

  Without a command the HTTP server is started, same as "menu-api serve".
  Configuration is read from the environment (DATABASE_URL, REDIS_URL,
  IDENTITY_AUTHORITY, AUTH_MODE, ...).
  `,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, newMigrateCmd())
	return root
}
