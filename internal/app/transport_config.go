package app

import (
	"github.com/nkyriakou/themis/internal/database"
	"github.com/nkyriakou/themis/pkg/mail"
	"github.com/nkyriakou/themis/pkg/sms"
)

// SMTPSettings converts EmailConfig to the mail package representation.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  c.SMTP.Enabled,
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
		UseTLS:   c.SMTP.UseTLS,
		Timeout:  c.SMTP.Timeout,
	}
}

// GatewaySettings converts SMSConfig to the sms package representation.
func (c SMSConfig) GatewaySettings() sms.GatewaySettings {
	return sms.GatewaySettings{
		Enabled: c.Enabled,
		URL:     c.URL,
		APIKey:  c.APIKey,
		From:    c.From,
		Timeout: c.Timeout,
	}
}

// DatabaseOptions converts DatabaseConfig to the database package representation,
// flattening the per-driver credential blocks.
func (c DatabaseConfig) DatabaseOptions() database.Config {
	cfg := database.Config{
		Driver: c.Driver,
		Path:   c.Path,
		DSN:    c.DSN,
	}

	switch c.Driver {
	case "postgres", "postgresql":
		cfg.Host = c.Postgres.Host
		cfg.Port = c.Postgres.Port
		cfg.Name = c.Postgres.Database
		cfg.User = c.Postgres.Username
		cfg.Password = c.Postgres.Password
	case "mysql", "mariadb":
		cfg.Host = c.MySQL.Host
		cfg.Port = c.MySQL.Port
		cfg.Name = c.MySQL.Database
		cfg.User = c.MySQL.Username
		cfg.Password = c.MySQL.Password
	}

	return cfg
}
