package cmd

import (
	"Wordrush/config"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "wordrush",
	Short: "Realtime backend for team word games",
	Long: `Wordrush serves the HTTP API and the socket.io endpoint of the game.
Rooms, teams, games and sessions live in Redis; users and their
lifetime scores live in PostgreSQL.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		config.SetupLogger(cfg)
		return nil
	},
}

// Execute adds all child commands to the root command and runs it. This is
// called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("[CMD-ERROR] Command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, reconcileCmd)
}
