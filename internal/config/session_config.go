package config

import "time"

const sessionSecretVar = "SESSION_SECRET"

type SessionConfig interface {
	GetSessionSecret() string
	GetSessionDuration() time.Duration
	GetStateTTL() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionSecret() string {
	return GetEnv(sessionSecretVar, "")
}

func (Session) GetSessionDuration() time.Duration {
	return 7 * 24 * time.Hour // 7 days
}

func (Session) GetStateTTL() time.Duration {
	return 10 * time.Minute
}
