package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar       = "PORT"
	appNameVar       = "APP_NAME"
	backendURLVar    = "BACKEND_URL"
	backendTimeout   = "BACKEND_TIMEOUT"
	environmentVar   = "ENV"
	defaultBackend   = "http://localhost:8000"
	defaultTimeout   = "30s"
	defaultEnv       = "DEV"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "3000")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Admin Gateway")
}

// GetBackendURL returns the base URL of the backend API all proxied
// requests are forwarded to.
func (EnvVars) GetBackendURL() string {
	return GetEnv(backendURLVar, defaultBackend)
}

// GetBackendTimeout returns the request timeout for backend calls as a
// Go duration string (e.g. "30s").
func (EnvVars) GetBackendTimeout() string {
	return GetEnv(backendTimeout, defaultTimeout)
}

func (EnvVars) GetEnv() string {
	return GetEnv(environmentVar, defaultEnv)
}

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
