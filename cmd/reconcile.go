package cmd

import (
	"Wordrush/config"
	"Wordrush/services/redis"
	"Wordrush/services/repository"
	"Wordrush/sync"
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Repair the Redis active-id indexes once",
	RunE: func(cmd *cobra.Command, args []string) error {
		redisClient, err := config.ConnectRedis(cfg)
		if err != nil {
			return err
		}
		defer redis.CloseRedis(redisClient)

		reconciler := sync.NewReconciler(redisClient,
			repository.NewRoomRepository(redisClient, cfg.RoomTTL),
			repository.NewTeamRepository(redisClient, cfg.TeamTTL),
			repository.NewGameRepository(redisClient, cfg.GameTTL),
			repository.NewScoreTeamRepository(redisClient, cfg.ScoreTTL),
		)
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		reports, err := reconciler.ReconcileAll(ctx)
		for _, report := range reports {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s removed=%d reindexed=%d\n", report.Index, report.Removed, report.Reindexed)
		}
		return err
	},
}
