package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultMprisService    = "org.mpris.MediaPlayer2.spotify"
	DefaultLrclibSearchURL = "https://lrclib.net/api/search"
	DefaultThemeColor      = "#8BA4E8"
	HTTPTimeoutSeconds     = 10
	PollInterval           = 100 * time.Millisecond

	envPrefix = "TICKTOCK"
	appName   = "ticktock"
)

type Config struct {
	MprisService      string
	LrclibURL         string
	LyricsDir         string
	DataDir           string
	ThemeColor        string
	HTTPTimeout       time.Duration
	SyncOffset        float64
	HideHeader        bool
	QueryArtist       bool
	StrictPersistence bool
	LogLevel          string
	LogPath           string
}

// Load reads defaults, then an optional config.yaml, then .env and the
// environment. Later sources win.
func Load() *Config {
	// a missing .env is the normal case
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configHome())
	v.AddConfigPath(".")
	// a missing or unreadable config file leaves defaults and env in place
	_ = v.ReadInConfig()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mpris_service", DefaultMprisService)
	v.SetDefault("lrclib_search_url", DefaultLrclibSearchURL)
	v.SetDefault("lyrics_dir", "")
	v.SetDefault("data_dir", "")
	v.SetDefault("theme_color", DefaultThemeColor)
	v.SetDefault("http_timeout", time.Duration(HTTPTimeoutSeconds)*time.Second)
	v.SetDefault("sync_offset", 0.0)
	v.SetDefault("hide_header", false)
	v.SetDefault("query_artist", false)
	v.SetDefault("strict_persistence", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_path", filepath.Join(stateHome(), "ticktock.log"))
}

func fromViper(v *viper.Viper) *Config {
	timeout := v.GetDuration("http_timeout")
	if timeout <= 0 {
		timeout = time.Duration(HTTPTimeoutSeconds) * time.Second
	}

	return &Config{
		MprisService:      v.GetString("mpris_service"),
		LrclibURL:         v.GetString("lrclib_search_url"),
		LyricsDir:         v.GetString("lyrics_dir"),
		DataDir:           v.GetString("data_dir"),
		ThemeColor:        v.GetString("theme_color"),
		HTTPTimeout:       timeout,
		SyncOffset:        v.GetFloat64("sync_offset"),
		HideHeader:        v.GetBool("hide_header"),
		QueryArtist:       v.GetBool("query_artist"),
		StrictPersistence: v.GetBool("strict_persistence"),
		LogLevel:          v.GetString("log_level"),
		LogPath:           v.GetString("log_path"),
	}
}

func configHome() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), appName)
}

func stateHome() string {
	return filepath.Join(xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state")), appName)
}

func xdgDir(env string, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(home, fallback)
}
