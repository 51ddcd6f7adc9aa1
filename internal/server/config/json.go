package config

import (
	"encoding/json"
	"os"

	"github.com/sultan0alshami/wathiq-sub001/internal/flagx"
	"github.com/sultan0alshami/wathiq-sub001/internal/timex"
)

// JsonConfig is the on-disk shape of the server config. Absent fields keep
// their previous values.
type JsonConfig struct {
	Addr            *string         `json:"addr"`
	DatabaseDSN     *string         `json:"database_dsn"`
	SecretKey       *string         `json:"secret_key"`
	TokenValidity   *timex.Duration `json:"token_validity"`
	RequireAuth     *bool           `json:"require_auth"`
	AllowedOrigins  []string        `json:"allowed_origins"`
	MaxPhotoBytes   *int64          `json:"max_photo_bytes"`
	S3RootUser      *string         `json:"s3_root_user"`
	S3RootPassword  *string         `json:"s3_root_password"`
	S3Bucket        *string         `json:"s3_bucket"`
	S3Region        *string         `json:"s3_region"`
	S3BaseEndpoint  *string         `json:"s3_base_endpoint"`

	WhatsAppToken        *string `json:"whatsapp_token"`
	WhatsAppPhoneID      *string `json:"whatsapp_phone_id"`
	WhatsAppManagerPhone *string `json:"whatsapp_manager_phone"`
	WhatsAppAPIBase      *string `json:"whatsapp_api_base"`

	ShutdownTimeout *timex.Duration `json:"shutdown_timeout"`
	LogLevel        *string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config, if any.
// It panics on unreadable or malformed files.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.Addr, jc.Addr)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.SecretKey, jc.SecretKey)
	setString(&cfg.S3RootUser, jc.S3RootUser)
	setString(&cfg.S3RootPassword, jc.S3RootPassword)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.WhatsAppToken, jc.WhatsAppToken)
	setString(&cfg.WhatsAppPhoneID, jc.WhatsAppPhoneID)
	setString(&cfg.WhatsAppManagerPhone, jc.WhatsAppManagerPhone)
	setString(&cfg.WhatsAppAPIBase, jc.WhatsAppAPIBase)

	if jc.TokenValidity != nil {
		cfg.TokenValidity = jc.TokenValidity.Duration
	}
	if jc.ShutdownTimeout != nil {
		cfg.ShutdownTimeout = jc.ShutdownTimeout.Duration
	}
	if jc.RequireAuth != nil {
		cfg.RequireAuth = *jc.RequireAuth
	}
	if jc.AllowedOrigins != nil {
		cfg.AllowedOrigins = jc.AllowedOrigins
	}
	if jc.MaxPhotoBytes != nil {
		cfg.MaxPhotoBytes = *jc.MaxPhotoBytes
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
