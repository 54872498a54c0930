package mailer

import (
	"errors"
	"os"
	"time"

	"github.com/lifelongwellness/wellnessbackend/models"
	"github.com/lifelongwellness/wellnessbackend/utils"
)

// Config carries the SMTP transport settings and the canonical dispatch
// policy. It is built once at startup from the environment and never
// mutated afterwards, so it is safe to share across in-flight requests.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	FromName    string
	FromAddress string
	AdminEmail  string

	// StartTLS upgrades the connection after EHLO (submission port 587).
	StartTLS bool

	MaxSendAttempts int
	RetryDelay      time.Duration
}

// ConfigFromEnv reads the transport configuration. SMTP credentials are
// mandatory; everything else has a default matching the Gmail setup the
// site runs on.
func ConfigFromEnv() (Config, error) {
	user := os.Getenv("EMAIL_USER")
	pass := os.Getenv("EMAIL_PASS")
	if user == "" || pass == "" {
		return Config{}, models.NewConfigurationError(
			errors.New("EMAIL_USER and EMAIL_PASS must be set"))
	}

	cfg := Config{
		Host:     utils.EnvDefault("SMTP_HOST", "smtp.gmail.com"),
		Port:     utils.ParseIntDefault(os.Getenv("SMTP_PORT"), 587),
		Username: user,
		Password: pass,

		FromName:    utils.EnvDefault("FROM_NAME", "Lifelong Wellness"),
		FromAddress: user,
		AdminEmail:  utils.EnvDefault("ADMIN_EMAIL", "meghahshaha@gmail.com"),

		StartTLS: utils.EnvDefault("SMTP_STARTTLS", "true") == "true",

		MaxSendAttempts: utils.ParseIntDefault(os.Getenv("SEND_MAX_ATTEMPTS"), 3),
		RetryDelay: time.Duration(
			utils.ParseIntDefault(os.Getenv("SEND_RETRY_DELAY_SECONDS"), 2)) * time.Second,
	}
	if cfg.MaxSendAttempts < 1 {
		cfg.MaxSendAttempts = 1
	}
	return cfg, nil
}
