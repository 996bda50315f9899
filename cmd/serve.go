package cmd

import (
	"Wordrush/config"
	"Wordrush/controllers"
	redis_models "Wordrush/models/redis"
	"Wordrush/middleware"
	"Wordrush/routes"
	"Wordrush/services/games"
	"Wordrush/services/redis"
	"Wordrush/services/repository"
	"Wordrush/services/rooms"
	"Wordrush/services/scores"
	"Wordrush/services/session"
	"Wordrush/services/socket_io"
	"Wordrush/services/teams"
	"Wordrush/sync"
	"Wordrush/utils"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and socket.io server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cfg)
	},
}

func serve(cfg *config.Config) error {
	log.Info().Msg("[SERVER] Setting up server...")
	if cfg.Prod {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := config.ConnectGORM(cfg.Postgres)
	if err != nil {
		return err
	}
	// Only migrate in development or during deployment
	if cfg.Postgres.Migrate {
		log.Info().Msg("[POSTGRES] Migrating PostgreSQL database...")
		if err := config.MigrateDatabase(gormDB); err != nil {
			log.Warn().Err(err).Msg("[POSTGRES] Database migration failed")
		}
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	redisClient, err := config.ConnectRedis(cfg)
	if err != nil {
		return err
	}
	defer redis.CloseRedis(redisClient)

	sio := socket_io.NewSocketServer(socket_io.Options{
		Origins:        cfg.FrontendDomain,
		CookieName:     cfg.SessionCookieName,
		AdminPriority:  cfg.AdminRolePriority,
		ChatRatePerSec: cfg.ChatRatePerSec,
		ChatRateBurst:  cfg.ChatRateBurst,
	})

	locker := redis.NewLocker(redisClient)
	sessions := session.NewManager(redisClient, cfg.SessionTTL)
	roomRepo := repository.NewRoomRepository(redisClient, cfg.RoomTTL)
	teamRepo := repository.NewTeamRepository(redisClient, cfg.TeamTTL)
	gameRepo := repository.NewGameRepository(redisClient, cfg.GameTTL)
	scoreRepo := repository.NewScoreTeamRepository(redisClient, cfg.ScoreTTL)

	policy := redis_models.ScoreAlways
	if cfg.ScorePlayingOnly {
		policy = redis_models.ScorePlayingOnly
	}
	scoreSvc := scores.NewService(scoreRepo, teamRepo, repository.NewScoreUserRepository(gormDB), locker, sio.Broadcaster)
	services := socket_io.Services{
		Rooms: rooms.NewService(roomRepo, teamRepo,
			repository.NewRoomTeamChatRepository(redisClient, cfg.RoomTeamChatMaxMessages, cfg.TeamTTL), locker, sio.Broadcaster),
		Teams: teams.NewService(teamRepo,
			repository.NewTeamChatRepository(redisClient, cfg.TeamChatMaxMessages, cfg.TeamTTL), locker, sio.Broadcaster),
		Games:    games.NewService(gameRepo, roomRepo, teamRepo, scoreSvc, locker, sio.Broadcaster, policy),
		Scores:   scoreSvc,
		Sessions: sessions,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	middleware.SetUpMiddleware(router, cfg.FrontendDomain)
	routes.SetupRoutes(router, routes.Dependencies{
		Auth: &controllers.AuthController{
			Users:      repository.NewUserRepository(gormDB),
			Sessions:   sessions,
			Hasher:     utils.BcryptHasher{},
			CookieName: cfg.SessionCookieName,
			Secure:     cfg.Prod,
		},
		Sessions:      sessions,
		CookieName:    cfg.SessionCookieName,
		AdminPriority: cfg.AdminRolePriority,
		Rooms:         services.Rooms,
		Teams:         services.Teams,
		Games:         services.Games,
		Scores:        services.Scores,
	})
	sio.Start(router, services)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if cfg.ReconcileInterval > 0 {
		reconciler := sync.NewReconciler(redisClient, roomRepo, teamRepo, gameRepo, scoreRepo)
		go reconciler.Run(ctx, cfg.ReconcileInterval)
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.Info().Str("port", cfg.Port).Msg("[SERVER] Server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("[SERVER-ERROR] Error starting server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("[SERVER] Shutting down")
	sio.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
