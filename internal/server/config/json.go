package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/kalahboard/internal/flagx"
	"github.com/dmitrijs2005/kalahboard/internal/timex"
)

// JsonConfig mirrors Config for JSON unmarshalling. Pointer fields tell
// "absent" from "zero" so a partial file only overrides what it names.
type JsonConfig struct {
	EndpointAddrHTTP            *string         `json:"endpoint_addr_http"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	BcryptCost                  *int            `json:"bcrypt_cost"`
	LogLevel                    *string         `json:"log_level"`
	AllowedOrigins              []string        `json:"allowed_origins"`
	APIBaseURL                  *string         `json:"api_base_url"`
	StaticDir                   *string         `json:"static_dir"`
	UploadDir                   *string         `json:"upload_dir"`
	AvatarStorage               *string         `json:"avatar_storage"`
	MaxAvatarSize               *int64          `json:"max_avatar_size"`
	S3RootUser                  *string         `json:"s3_root_user"`
	S3RootPassword              *string         `json:"s3_root_password"`
	S3Bucket                    *string         `json:"s3_bucket"`
	S3Region                    *string         `json:"s3_region"`
	S3BaseEndpoint              *string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the JSON file named by -c/-config.
// Without that flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	setString(&config.LogLevel, c.LogLevel)
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	setString(&config.APIBaseURL, c.APIBaseURL)
	setString(&config.StaticDir, c.StaticDir)
	setString(&config.UploadDir, c.UploadDir)
	setString(&config.AvatarStorage, c.AvatarStorage)
	if c.MaxAvatarSize != nil {
		config.MaxAvatarSize = *c.MaxAvatarSize
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
