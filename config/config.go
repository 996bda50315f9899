package config

import (
	game_constants "Wordrush/constants/game"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

type Postgres struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
	Verbose  bool
	Migrate  bool
}

// DSN builds the connection string gorm opens
func (p Postgres) DSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s", p.User, p.Password, p.Host, p.Port, p.Database)
}

type Config struct {
	Port           string
	Prod           bool
	LogLevel       string
	FrontendDomain []string

	RedisURL          string
	RedisDB           int
	RedisFlushOnStart bool

	Postgres Postgres

	SessionTTL        time.Duration
	SessionCookieName string

	RoomTTL  time.Duration
	TeamTTL  time.Duration
	GameTTL  time.Duration
	ScoreTTL time.Duration

	TeamChatMaxMessages     int
	RoomTeamChatMaxMessages int

	ScorePlayingOnly  bool
	AdminRolePriority int

	ChatRatePerSec float64
	ChatRateBurst  int

	ReconcileInterval time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("PROD", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("FRONTEND_DOMAIN", "http://localhost:3000")
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_FLUSH_ON_START", false)
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("VERBOSE_POSTGRES", false)
	v.SetDefault("MIGRATE_POSTGRES", false)
	v.SetDefault("AUTH_SESSION_TTL_SEC", int(game_constants.DEFAULT_SESSION_TTL/time.Second))
	v.SetDefault("AUTH_SESSION_COOKIE_NAME", "session_id")
	for _, key := range []string{"ROOM_TTL_SEC", "TEAM_TTL_SEC", "GAME_TTL_SEC", "SCORE_TTL_SEC"} {
		v.SetDefault(key, int(game_constants.DEFAULT_ENTITY_TTL/time.Second))
	}
	v.SetDefault("TEAM_CHAT_MAX_MESSAGES", game_constants.DEFAULT_TEAM_CHAT_CAP)
	v.SetDefault("ROOM_TEAM_CHAT_MAX_MESSAGES", game_constants.DEFAULT_ROOM_TEAM_CHAT_CAP)
	v.SetDefault("GAME_SCORE_PLAYING_ONLY", false)
	v.SetDefault("ADMIN_ROLE_PRIORITY", game_constants.ADMIN_ROLE_PRIORITY)
	v.SetDefault("CHAT_RATE_PER_SEC", 5)
	v.SetDefault("CHAT_RATE_BURST", 10)
	v.SetDefault("RECONCILE_INTERVAL_SEC", 300)
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	// A missing .env is fine, the environment may carry everything
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	p := parser{v: v}
	cfg := &Config{
		Port:              v.GetString("PORT"),
		Prod:              p.bool("PROD"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		FrontendDomain:    splitList(v.GetString("FRONTEND_DOMAIN")),
		RedisURL:          v.GetString("REDIS_URL"),
		RedisDB:           p.int("REDIS_DB"),
		RedisFlushOnStart: p.bool("REDIS_FLUSH_ON_START"),
		Postgres: Postgres{
			User:     v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWORD"),
			Host:     v.GetString("POSTGRES_HOST"),
			Port:     v.GetString("POSTGRES_PORT"),
			Database: v.GetString("POSTGRES_DATABASE"),
			Verbose:  p.bool("VERBOSE_POSTGRES"),
			Migrate:  p.bool("MIGRATE_POSTGRES"),
		},
		SessionTTL:              p.seconds("AUTH_SESSION_TTL_SEC"),
		SessionCookieName:       v.GetString("AUTH_SESSION_COOKIE_NAME"),
		RoomTTL:                 p.seconds("ROOM_TTL_SEC"),
		TeamTTL:                 p.seconds("TEAM_TTL_SEC"),
		GameTTL:                 p.seconds("GAME_TTL_SEC"),
		ScoreTTL:                p.seconds("SCORE_TTL_SEC"),
		TeamChatMaxMessages:     p.int("TEAM_CHAT_MAX_MESSAGES"),
		RoomTeamChatMaxMessages: p.int("ROOM_TEAM_CHAT_MAX_MESSAGES"),
		ScorePlayingOnly:        p.bool("GAME_SCORE_PLAYING_ONLY"),
		AdminRolePriority:       p.int("ADMIN_ROLE_PRIORITY"),
		ChatRatePerSec:          p.float("CHAT_RATE_PER_SEC"),
		ChatRateBurst:           p.int("CHAT_RATE_BURST"),
		ReconcileInterval:       p.seconds("RECONCILE_INTERVAL_SEC"),
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for key, value := range map[string]int{
		"TEAM_CHAT_MAX_MESSAGES":      c.TeamChatMaxMessages,
		"ROOM_TEAM_CHAT_MAX_MESSAGES": c.RoomTeamChatMaxMessages,
	} {
		if value < game_constants.MIN_CHAT_CAP || value > game_constants.MAX_CHAT_CAP {
			return fmt.Errorf("%s must be between %d and %d, got %d",
				key, game_constants.MIN_CHAT_CAP, game_constants.MAX_CHAT_CAP, value)
		}
	}
	for key, value := range map[string]time.Duration{
		"AUTH_SESSION_TTL_SEC": c.SessionTTL,
		"ROOM_TTL_SEC":         c.RoomTTL,
		"TEAM_TTL_SEC":         c.TeamTTL,
		"GAME_TTL_SEC":         c.GameTTL,
		"SCORE_TTL_SEC":        c.ScoreTTL,
	} {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	if c.ReconcileInterval < 0 {
		return fmt.Errorf("RECONCILE_INTERVAL_SEC must not be negative")
	}
	return nil
}

// parser converts raw values and keeps the first failure. viper's own
// getters turn garbage into zero values silently.
type parser struct {
	v   *viper.Viper
	err error
}

func (p *parser) check(key string, err error) {
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid value %q for %s: %w", fmt.Sprint(p.v.Get(key)), key, err)
	}
}

func (p *parser) int(key string) int {
	n, err := cast.ToIntE(strings.TrimSpace(p.v.GetString(key)))
	p.check(key, err)
	return n
}

func (p *parser) float(key string) float64 {
	f, err := cast.ToFloat64E(strings.TrimSpace(p.v.GetString(key)))
	p.check(key, err)
	return f
}

func (p *parser) bool(key string) bool {
	raw := strings.TrimSpace(p.v.GetString(key))
	if raw == "" {
		return false
	}
	b, err := cast.ToBoolE(raw)
	p.check(key, err)
	return b
}

func (p *parser) seconds(key string) time.Duration {
	return time.Duration(p.int(key)) * time.Second
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
