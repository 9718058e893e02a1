package config

import (
	"errors"
	"fmt"
	"strings"
)

type Config interface {
	EnvConfig
	CorsConfig
	GoogleConfig
	SessionConfig
	CsvConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Google
	Session
	Csv
	Store
}

func New() Config {
	return mainConfig{}
}

// Validate reports every required setting that is missing
func Validate(c Config) error {
	var missing []string
	if c.GetGoogleClientID() == "" {
		missing = append(missing, googleClientIDVar)
	}
	if c.GetGoogleClientSecret() == "" {
		missing = append(missing, googleClientSecretVar)
	}
	if c.GetGoogleRedirectURI() == "" {
		missing = append(missing, googleRedirectURIVar)
	}
	if c.GetSessionSecret() == "" {
		missing = append(missing, sessionSecretVar)
	}
	if c.GetCredentialStore() == StoreRedis && c.GetRedisAddr() == "" {
		missing = append(missing, redisAddrVar)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if !validDelimiter(c.GetCsvDelimiter()) {
		return fmt.Errorf("invalid %s: %q", csvDelimiterVar, c.GetCsvDelimiter())
	}

	switch c.GetCredentialStore() {
	case StoreCookie, StoreMemory, StoreRedis:
	default:
		return errors.New("unknown " + credentialStoreVar + ": " + c.GetCredentialStore())
	}
	return nil
}
