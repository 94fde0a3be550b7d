package config

type Config interface {
	EnvConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBackendURL() string
	GetBackendTimeout() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Session
}

func New() Config {
	return mainConfig{}
}
