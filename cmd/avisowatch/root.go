package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/avisowatch/version"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "avisowatch",
		Short: "avisowatch - reconnecting watcher for Aviso notification feeds",
		Long: `avisowatch subscribes to an Aviso notification server over Server-Sent
Events, dispatches each event to a kind-specific handler, and keeps the
stream alive by reconnecting with a fixed interval whenever it is lost.`,
		Version: version.GetFullVersion(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(newWatchCommand())

	return rootCmd
}
