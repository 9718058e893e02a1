package config

const (
	credentialStoreVar = "CREDENTIAL_STORE"
	redisAddrVar       = "REDIS_ADDR"

	// StoreCookie embeds credentials in the signed session cookie
	StoreCookie = "cookie"
	// StoreMemory keeps credentials in process, keyed by user id
	StoreMemory = "memory"
	// StoreRedis keeps credentials in Redis, keyed by user id
	StoreRedis = "redis"
)

type StoreConfig interface {
	GetCredentialStore() string
	GetRedisAddr() string
	GetRedisPassword() string
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetCredentialStore() string {
	return GetEnv(credentialStoreVar, StoreCookie)
}

func (Store) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "")
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}
