package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the MathSoc backend.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Media    MediaConfig    `mapstructure:"media"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	LogLevel    string   `mapstructure:"log_level"`
	LogFile     string   `mapstructure:"log_file"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	// RateLimit caps requests per client IP and path per minute. Zero disables it.
	RateLimit int `mapstructure:"rate_limit"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// CacheConfig describes the content cache and its durable snapshot store.
type CacheConfig struct {
	// ContentTTL bounds how stale a cached content payload may be served.
	ContentTTL time.Duration    `mapstructure:"content_ttl"`
	Redis      RedisCacheConfig `mapstructure:"redis"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// AuthConfig captures authentication settings for the admin dashboard.
type AuthConfig struct {
	JWT   JWTSettings    `mapstructure:"jwt"`
	Admin AdminBootstrap `mapstructure:"admin"`
}

// JWTSettings configures JWT access tokens.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"access_token_ttl"`
}

// AdminBootstrap seeds the initial admin account on first start. Leaving the
// username empty skips seeding entirely.
type AdminBootstrap struct {
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// MediaConfig locates the gallery directories and the upload target.
type MediaConfig struct {
	GalleryImagesDir string `mapstructure:"gallery_images_dir"`
	GalleryVideosDir string `mapstructure:"gallery_videos_dir"`
	UploadDir        string `mapstructure:"upload_dir"`
	UploadBaseURL    string `mapstructure:"upload_base_url"`
	GalleryPageSize  int    `mapstructure:"gallery_page_size"`
	// RepeatFactor sets how many shuffled passes over the media set make up
	// one virtual gallery feed.
	RepeatFactor int `mapstructure:"repeat_factor"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("MATHSOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_file", "")
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.rate_limit", 300)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/mathsoc.sqlite")

	v.SetDefault("cache.content_ttl", "24h")
	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "5s")

	v.SetDefault("auth.jwt.issuer", "mathsoc")
	v.SetDefault("auth.jwt.access_token_ttl", "12h")

	v.SetDefault("media.gallery_images_dir", "./public/images/gallery")
	v.SetDefault("media.gallery_videos_dir", "./public/videos/gallery")
	v.SetDefault("media.upload_dir", "./public/uploads")
	v.SetDefault("media.upload_base_url", "/uploads")
	v.SetDefault("media.gallery_page_size", 8)
	v.SetDefault("media.repeat_factor", 10)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
