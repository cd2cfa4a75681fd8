package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string `yaml:"http-port" env:"HTTP_PORT" env-default:"8080"`
	Operator string `yaml:"operator" env:"OPERATOR_ACCOUNT" env-required:"true"`
	Redis    Redis  `yaml:"redis"`
	Game     Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Game holds the wagering rules: the minimum stake, the fixed operator
// fee, and the three timeout windows of the lifecycle. Windows are in
// seconds, matching the origin system's units.
type Game struct {
	MinWager         int64 `yaml:"min-wager" env:"GAME_MIN_WAGER" env-default:"1000"`
	Fee              int64 `yaml:"fee" env:"GAME_FEE" env-default:"1000"`
	JoinWindowSecs   int64 `yaml:"join-window-secs" env:"GAME_JOIN_WINDOW_SECS" env-default:"5000"`
	MoveWindowSecs   int64 `yaml:"move-window-secs" env:"GAME_MOVE_WINDOW_SECS" env-default:"600"`
	RevealWindowSecs int64 `yaml:"reveal-window-secs" env:"GAME_REVEAL_WINDOW_SECS" env-default:"600"`
	GraceWindowSecs  int64 `yaml:"grace-window-secs" env:"GAME_GRACE_WINDOW_SECS" env-default:"120"`
}

func (that *Game) JoinWindow() time.Duration {
	return time.Duration(that.JoinWindowSecs) * time.Second
}

func (that *Game) MoveWindow() time.Duration {
	return time.Duration(that.MoveWindowSecs) * time.Second
}

func (that *Game) RevealWindow() time.Duration {
	return time.Duration(that.RevealWindowSecs) * time.Second
}

func (that *Game) GraceWindow() time.Duration {
	return time.Duration(that.GraceWindowSecs) * time.Second
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
