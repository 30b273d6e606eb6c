package config

import (
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"soundbed/log"
	"soundbed/pkg/errors"
)

type App struct {
	Proxy       string   `toml:"proxy"`
	ParsedProxy *url.URL `toml:"-"`
	TaskLimit   int      `toml:"task_limit"`
	Seed        int64    `toml:"seed"`
	TempDir     string   `toml:"temp_dir"`
}

type Server struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type OpenaiConfig struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
}

type Transcribe struct {
	Provider string       `toml:"provider"`
	Openai   OpenaiConfig `toml:"openai"`
}

type Llm struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
}

type Oss struct {
	AccessKeyId     string `toml:"access_key_id"`
	AccessKeySecret string `toml:"access_key_secret"`
	Bucket          string `toml:"bucket"`
	Region          string `toml:"region"`
	Prefix          string `toml:"prefix"`
}

type Assets struct {
	Provider string `toml:"provider"`
	LocalDir string `toml:"local_dir"`
	Oss      Oss    `toml:"oss"`
}

type Bgm struct {
	DefaultLevel float64  `toml:"default_level"`
	Crossfade    float64  `toml:"crossfade"`
	Resolution   string   `toml:"resolution"`
	Themes       []string `toml:"themes"`
}

type Queue struct {
	Enabled       bool   `toml:"enabled"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	Concurrency   int    `toml:"concurrency"`
}

type Config struct {
	App        App        `toml:"app"`
	Server     Server     `toml:"server"`
	Transcribe Transcribe `toml:"transcribe"`
	Llm        Llm        `toml:"llm"`
	Assets     Assets     `toml:"assets"`
	Bgm        Bgm        `toml:"bgm"`
	Queue      Queue      `toml:"queue"`
}

var Conf Config

var resolveConfigPath = func() (string, error) {
	return filepath.Join("config", "config.toml"), nil
}

func defaultConfig() Config {
	return Config{
		App: App{
			TaskLimit: 4,
			Seed:      1,
			TempDir:   "tasks",
		},
		Server: Server{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Transcribe: Transcribe{
			Provider: "openai",
		},
		Assets: Assets{
			Provider: "none",
			Oss: Oss{
				Region: "cn-shanghai",
				Prefix: "BGM",
			},
		},
		Bgm: Bgm{
			DefaultLevel: 0.3,
			Crossfade:    2.0,
			Resolution:   "1280x720",
			Themes:       []string{"neutral", "ambient", "energetic", "tense", "uplifting", "somber"},
		},
		Queue: Queue{
			RedisAddr:   "127.0.0.1:6379",
			Concurrency: 2,
		},
	}
}

// LoadOrCreateConfig reads the config file, writing a default one first when
// none exists. Returns whether a new file was created.
func LoadOrCreateConfig() (bool, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		Conf = defaultConfig()
		if err := SaveConfig(); err != nil {
			return false, err
		}
		log.GetLogger().Info("created default config file: " + path)
		return true, nil
	}

	if _, err := toml.DecodeFile(path, &Conf); err != nil {
		return false, errors.Wrap(errors.CodeInvalidParams, "decode config file failed", err)
	}
	return false, nil
}

// SaveConfig writes Conf to the config file, creating parent directories as
// needed.
func SaveConfig() error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(Conf)
}

// CheckConfig validates field ranges and derives values that are not loaded
// directly, like the parsed proxy URL. Invalid optional values fall back to
// defaults rather than aborting startup.
func CheckConfig() error {
	if Conf.App.Proxy != "" {
		parsed, err := url.Parse(Conf.App.Proxy)
		if err != nil {
			return errors.Wrap(errors.CodeInvalidParams, "invalid proxy address", err)
		}
		Conf.App.ParsedProxy = parsed
	}
	if Conf.App.TaskLimit <= 0 {
		Conf.App.TaskLimit = 4
	}
	if Conf.App.TempDir == "" {
		Conf.App.TempDir = "tasks"
	}
	if Conf.Bgm.DefaultLevel < 0 || Conf.Bgm.DefaultLevel > 1 {
		return errors.New(errors.CodeInvalidParams, "bgm default_level must be within [0, 1]")
	}
	if Conf.Bgm.DefaultLevel == 0 {
		Conf.Bgm.DefaultLevel = 0.3
	}
	if Conf.Bgm.Crossfade <= 0 {
		Conf.Bgm.Crossfade = 2.0
	}
	if Conf.Bgm.Resolution == "" {
		Conf.Bgm.Resolution = "1280x720"
	}
	if len(Conf.Bgm.Themes) == 0 {
		Conf.Bgm.Themes = defaultConfig().Bgm.Themes
	}
	if Conf.Queue.Concurrency <= 0 {
		Conf.Queue.Concurrency = 2
	}
	return nil
}
