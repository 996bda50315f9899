package config

import (
	game_constants "Wordrush/constants/game"
	"Wordrush/models/postgres"
	"database/sql"
	"fmt"
	stdlog "log"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectGORM returns a GORM DB instance connected to PostgreSQL
func ConnectGORM(cfg Postgres) (*gorm.DB, error) {
	// NOTE: See https://github.com/go-gorm/gorm/issues/5409
	sqlDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		log.Error().Err(err).Msg("[POSTGRES-ERROR] Error connecting to PostgreSQL")
		return nil, err
	}

	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.Verbose {
		gormConfig.Logger = logger.New(
			stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  logger.Info,
				IgnoreRecordNotFoundError: false,
				Colorful:                  true,
			},
		)
	}

	db, err := OpenGORM(sqlDB, gormConfig)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		log.Error().Err(err).Msg("[POSTGRES-ERROR] Error pinging PostgreSQL")
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info().Msg("[POSTGRES] Successfully connected to PostgreSQL with GORM")
	return db, nil
}

// OpenGORM wraps an open connection pool. Tests pass a sqlmock pool.
func OpenGORM(sqlDB *sql.DB, gormConfig *gorm.Config) (*gorm.DB, error) {
	if gormConfig == nil {
		gormConfig = &gorm.Config{}
	}
	db, err := gorm.Open(pgdriver.New(pgdriver.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), gormConfig)
	if err != nil {
		log.Error().Err(err).Msg("[POSTGRES-ERROR] Error connecting to PostgreSQL with GORM")
		return nil, err
	}
	return db, nil
}

// MigrateDatabase migrates the GORM models to the PostgreSQL database and
// makes sure the default role exists
func MigrateDatabase(db *gorm.DB) error {
	// NOTE: needs postgres driver v1.4.0, see https://github.com/pilinux/gorest/issues/167
	if err := db.AutoMigrate(postgres.Role{}, postgres.User{}, postgres.ScoreUser{}); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	if err := SeedRoles(db); err != nil {
		return err
	}
	log.Info().Msg("[POSTGRES] PostgreSQL database migrated successfully")
	return nil
}

// SeedRoles creates the player and admin roles when missing
func SeedRoles(db *gorm.DB) error {
	roles := []postgres.Role{
		{Name: game_constants.DEFAULT_ROLE_NAME, Priority: game_constants.DEFAULT_ROLE_PRIORITY},
		{Name: "admin", Priority: game_constants.ADMIN_ROLE_PRIORITY},
	}
	for i := range roles {
		if err := db.Where(postgres.Role{Name: roles[i].Name}).FirstOrCreate(&roles[i]).Error; err != nil {
			return fmt.Errorf("error seeding role %s: %w", roles[i].Name, err)
		}
	}
	return nil
}
