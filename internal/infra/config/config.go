package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	HTTPAddress string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	JWTIssuer         string
	JWTAudience       string

	PasswordPepper string

	// Verification codes live this long in the code store.
	VerificationCodeTTL time.Duration

	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	MailFrom      string
	MailWorkers   int
	MailQueueSize int

	AllowedOrigins   []string
	AllowCredentials bool
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	for _, key := range []string{
		"DATABASE_URL", "REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
		"HTTP_ADDRESS",
		"JWT_PRIVATE_KEY_PATH", "JWT_PUBLIC_KEY_PATH",
		"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "JWT_ISSUER", "JWT_AUDIENCE",
		"PASSWORD_PEPPER", "VERIFICATION_CODE_TTL",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD",
		"MAIL_FROM", "MAIL_WORKERS", "MAIL_QUEUE_SIZE",
		"ALLOWED_ORIGINS", "ALLOW_CREDENTIALS",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "720h")
	v.SetDefault("VERIFICATION_CODE_TTL", "120s")
	v.SetDefault("MAIL_WORKERS", 4)
	v.SetDefault("MAIL_QUEUE_SIZE", 256)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:         v.GetString("DATABASE_URL"),
		RedisAddress:        v.GetString("REDIS_ADDRESS"),
		RedisPassword:       v.GetString("REDIS_PASSWORD"),
		RedisDB:             v.GetInt("REDIS_DB"),
		HTTPAddress:         v.GetString("HTTP_ADDRESS"),
		JWTPrivateKeyPath:   v.GetString("JWT_PRIVATE_KEY_PATH"),
		JWTPublicKeyPath:    v.GetString("JWT_PUBLIC_KEY_PATH"),
		AccessTokenTTL:      v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:     v.GetDuration("REFRESH_TOKEN_TTL"),
		JWTIssuer:           v.GetString("JWT_ISSUER"),
		JWTAudience:         v.GetString("JWT_AUDIENCE"),
		PasswordPepper:      v.GetString("PASSWORD_PEPPER"),
		VerificationCodeTTL: v.GetDuration("VERIFICATION_CODE_TTL"),
		SMTPHost:            v.GetString("SMTP_HOST"),
		SMTPPort:            v.GetInt("SMTP_PORT"),
		SMTPUsername:        v.GetString("SMTP_USERNAME"),
		SMTPPassword:        v.GetString("SMTP_PASSWORD"),
		MailFrom:            v.GetString("MAIL_FROM"),
		MailWorkers:         v.GetInt("MAIL_WORKERS"),
		MailQueueSize:       v.GetInt("MAIL_QUEUE_SIZE"),
		AllowedOrigins:      v.GetStringSlice("ALLOWED_ORIGINS"),
		AllowCredentials:    v.GetBool("ALLOW_CREDENTIALS"),
	}

	required := map[string]string{
		"DATABASE_URL":         cfg.DatabaseURL,
		"REDIS_ADDRESS":        cfg.RedisAddress,
		"JWT_PRIVATE_KEY_PATH": cfg.JWTPrivateKeyPath,
		"JWT_PUBLIC_KEY_PATH":  cfg.JWTPublicKeyPath,
		"JWT_ISSUER":           cfg.JWTIssuer,
		"JWT_AUDIENCE":         cfg.JWTAudience,
		"PASSWORD_PEPPER":      cfg.PasswordPepper,
	}
	for key, val := range required {
		if val == "" {
			return nil, fmt.Errorf("%s is not set", key)
		}
	}

	return cfg, nil
}
