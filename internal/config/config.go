package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/pinewood/booking-api/internal/schedule"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Booking   BookingConfig   `mapstructure:"booking"`
	Admin     AdminConfig     `mapstructure:"admin"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN builds a lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type RedisConfig struct {
	URL     string        `mapstructure:"url"`
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// BookingConfig is the scheduling policy of the practice.
type BookingConfig struct {
	BufferMinutes      int    `mapstructure:"buffer_minutes"`
	MinimumNoticeHours int    `mapstructure:"minimum_notice_hours"`
	AdvanceBookingDays int    `mapstructure:"advance_booking_days"`
	Timezone           string `mapstructure:"timezone"`
	// Display window bounds the admin calendar grid only; it never grants
	// bookable availability.
	DisplayWindowStart string `mapstructure:"display_window_start"`
	DisplayWindowEnd   string `mapstructure:"display_window_end"`
}

func (c BookingConfig) Buffer() time.Duration {
	return time.Duration(c.BufferMinutes) * time.Minute
}

func (c BookingConfig) MinimumNotice() time.Duration {
	return time.Duration(c.MinimumNoticeHours) * time.Hour
}

func (c BookingConfig) MaxAdvance() time.Duration {
	return time.Duration(c.AdvanceBookingDays) * 24 * time.Hour
}

func (c BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c BookingConfig) DisplayWindow() (schedule.Window, error) {
	start, err := schedule.ParseTimeOfDay(c.DisplayWindowStart)
	if err != nil {
		return schedule.Window{}, err
	}
	end, err := schedule.ParseTimeOfDay(c.DisplayWindowEnd)
	if err != nil {
		return schedule.Window{}, err
	}
	return schedule.Window{Start: start, End: end}, nil
}

type AdminConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	// Bcrypt hash of the static admin API key; either credential grants
	// access to the admin route group.
	APIKeyHash string `mapstructure:"api_key_hash"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type WorkerConfig struct {
	ReminderLeadTime time.Duration `mapstructure:"reminder_lead_time"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
}

// envOverrides are applied on top of the config file, matching the
// environment the deployment manifests set.
type envOverrides struct {
	DBHost        string `envconfig:"DB_HOST"`
	DBPort        int    `envconfig:"DB_PORT"`
	DBUser        string `envconfig:"DB_USER"`
	DBPassword    string `envconfig:"DB_PASSWORD"`
	DBName        string `envconfig:"DB_NAME"`
	RedisURL      string `envconfig:"REDIS_URL"`
	SMTPHost      string `envconfig:"SMTP_HOST"`
	SMTPPort      int    `envconfig:"SMTP_PORT"`
	SMTPUsername  string `envconfig:"SMTP_USERNAME"`
	SMTPPassword  string `envconfig:"SMTP_PASSWORD"`
	AdminJWT      string `envconfig:"ADMIN_JWT_SECRET"`
	AdminKeyHash  string `envconfig:"ADMIN_API_KEY_HASH"`
	ServerPort    int    `envconfig:"PORT"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/app/config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	applyOverrides(&cfg, env)

	if _, err := cfg.Booking.Location(); err != nil {
		return nil, fmt.Errorf("invalid practice timezone %q: %w", cfg.Booking.Timezone, err)
	}
	if _, err := cfg.Booking.DisplayWindow(); err != nil {
		return nil, fmt.Errorf("invalid display window: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "10s")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.lock_ttl", "5s")
	viper.SetDefault("booking.buffer_minutes", 15)
	viper.SetDefault("booking.minimum_notice_hours", 24)
	viper.SetDefault("booking.advance_booking_days", 90)
	viper.SetDefault("booking.timezone", "Europe/Berlin")
	viper.SetDefault("booking.display_window_start", "07:00")
	viper.SetDefault("booking.display_window_end", "21:00")
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests_per_second", 20)
	viper.SetDefault("rate_limit.burst", 40)
	viper.SetDefault("worker.reminder_lead_time", "24h")
	viper.SetDefault("worker.poll_interval", "5m")
}

func applyOverrides(cfg *Config, env envOverrides) {
	if env.DBHost != "" {
		cfg.Database.Host = env.DBHost
	}
	if env.DBPort != 0 {
		cfg.Database.Port = env.DBPort
	}
	if env.DBUser != "" {
		cfg.Database.User = env.DBUser
	}
	if env.DBPassword != "" {
		cfg.Database.Password = env.DBPassword
	}
	if env.DBName != "" {
		cfg.Database.Name = env.DBName
	}
	if env.RedisURL != "" {
		cfg.Redis.URL = env.RedisURL
	}
	if env.SMTPHost != "" {
		cfg.SMTP.Host = env.SMTPHost
	}
	if env.SMTPPort != 0 {
		cfg.SMTP.Port = env.SMTPPort
	}
	if env.SMTPUsername != "" {
		cfg.SMTP.Username = env.SMTPUsername
	}
	if env.SMTPPassword != "" {
		cfg.SMTP.Password = env.SMTPPassword
	}
	if env.AdminJWT != "" {
		cfg.Admin.JWTSecret = env.AdminJWT
	}
	if env.AdminKeyHash != "" {
		cfg.Admin.APIKeyHash = env.AdminKeyHash
	}
	if env.ServerPort != 0 {
		cfg.Server.Port = env.ServerPort
	}
}
