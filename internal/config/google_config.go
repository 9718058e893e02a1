package config

const (
	googleClientIDVar     = "GOOGLE_CLIENT_ID"
	googleClientSecretVar = "GOOGLE_CLIENT_SECRET"
	googleRedirectURIVar  = "GOOGLE_REDIRECT_URI"
)

type GoogleConfig interface {
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleRedirectURI() string
}

type Google struct{}

var _ GoogleConfig = Google{}

func (Google) GetGoogleClientID() string {
	return GetEnv(googleClientIDVar, "")
}

func (Google) GetGoogleClientSecret() string {
	return GetEnv(googleClientSecretVar, "")
}

func (Google) GetGoogleRedirectURI() string {
	return GetEnv(googleRedirectURIVar, "")
}
