package cmd

import (
	"Wordrush/config"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the PostgreSQL schema and seed the roles",
	RunE: func(cmd *cobra.Command, args []string) error {
		gormDB, err := config.ConnectGORM(cfg.Postgres)
		if err != nil {
			return err
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		return config.MigrateDatabase(gormDB)
	},
}
