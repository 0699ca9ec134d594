package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Words    Words   `yaml:"words"`
	Storage  Storage `yaml:"storage"`
	Redis    Redis   `yaml:"redis"`
}

type Words struct {
	Path  string `yaml:"path" env:"WORDS_PATH" env-default:"words/words.txt"`
	Count int    `yaml:"count" env:"WORDS_COUNT" env-default:"0"`
}

// Storage selects where saved sessions go. Kind is one of "file", "redis" or "sqlite".
type Storage struct {
	Kind       string `yaml:"kind" env:"STORAGE_KIND" env-default:"file"`
	Dir        string `yaml:"dir" env:"STORAGE_DIR" env-default:"saved"`
	SQLitePath string `yaml:"sqlite-path" env:"STORAGE_SQLITE_PATH" env-default:"saved/sessions.db"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
