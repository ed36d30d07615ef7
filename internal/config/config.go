package config

import (
	"net"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env               string        `mapstructure:"ENV"`
	Host              string        `mapstructure:"APP_HOST"`
	Port              string        `mapstructure:"APP_PORT"`
	Debug             bool          `mapstructure:"DEBUG"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	RedisURL          string        `mapstructure:"REDIS_URL"`
	QianfanAK         string        `mapstructure:"QIANFAN_AK"`
	QianfanSK         string        `mapstructure:"QIANFAN_SK"`
	AIBaseURL         string        `mapstructure:"AI_BASE_URL"`
	AIModel           string        `mapstructure:"AI_MODEL"`
	AITimeout         time.Duration `mapstructure:"AI_TIMEOUT"`
	AICacheTTL        time.Duration `mapstructure:"AI_CACHE_TTL"`
	SecretKey         string        `mapstructure:"SECRET_KEY"`
	AdminKey          string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed       string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	LogFile           string        `mapstructure:"LOG_FILE"`
	GeocoderURL       string        `mapstructure:"GEOCODER_URL"`
	GeocoderUserAgent string        `mapstructure:"GEOCODER_USER_AGENT"`
	GeocoderCity      string        `mapstructure:"GEOCODER_CITY"`
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// AIEnabled reports whether upstream credentials were supplied.
func (c Config) AIEnabled() bool {
	return c.QianfanAK != ""
}

func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile reads an optional env file; process environment wins over it.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("APP_HOST", "0.0.0.0")
	v.SetDefault("APP_PORT", "8000")
	v.SetDefault("DEBUG", false)
	v.SetDefault("DATABASE_URL", "sqlite:///./govhotline.db")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("QIANFAN_AK", "")
	v.SetDefault("QIANFAN_SK", "")
	v.SetDefault("AI_BASE_URL", "https://qianfan.baidubce.com/v2")
	v.SetDefault("AI_MODEL", "ERNIE-Speed-128K")
	v.SetDefault("AI_TIMEOUT", "20s")
	v.SetDefault("AI_CACHE_TTL", "10m")
	v.SetDefault("SECRET_KEY", "your-secret-key-change-in-production")
	v.SetDefault("ADMIN_KEY", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("REQUEST_TIMEOUT", "60s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("GEOCODER_URL", "")
	v.SetDefault("GEOCODER_USER_AGENT", "govhotline-backend")
	v.SetDefault("GEOCODER_CITY", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = 20 * time.Second
	}
	return cfg, nil
}
