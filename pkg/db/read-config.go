package db

import (
	"fmt"
	"log/slog"
)

const (
	DEFAULT_TIMEOUT           = 30
	DEFAULT_IDLE_CONN_TIMEOUT = 45
	DEFAULT_MAX_POOL_SIZE     = 8
)

// DBConfigFromYamlObj builds the connection config from the yaml section of a service config.
func DBConfigFromYamlObj(yamlObj DBConfigYaml) DBConfig {
	if yamlObj.ConnectionStr == "" {
		slog.Error("DB connection string missing")
		panic("DB connection string missing")
	}

	prefix := yamlObj.ConnectionPrefix
	URI := fmt.Sprintf(`mongodb%s://%s`, prefix, yamlObj.ConnectionStr)
	if yamlObj.Username != "" {
		URI = fmt.Sprintf(`mongodb%s://%s:%s@%s`, prefix, yamlObj.Username, yamlObj.Password, yamlObj.ConnectionStr)
	}

	timeout := yamlObj.Timeout
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	idleConnTimeout := yamlObj.IdleConnTimeout
	if idleConnTimeout <= 0 {
		idleConnTimeout = DEFAULT_IDLE_CONN_TIMEOUT
	}
	maxPoolSize := yamlObj.MaxPoolSize
	if maxPoolSize <= 0 {
		maxPoolSize = DEFAULT_MAX_POOL_SIZE
	}

	return DBConfig{
		URI:              URI,
		Timeout:          timeout,
		IdleConnTimeout:  idleConnTimeout,
		MaxPoolSize:      uint64(maxPoolSize),
		NoCursorTimeout:  yamlObj.UseNoCursorTimeout,
		DBNamePrefix:     yamlObj.DBNamePrefix,
		RunIndexCreation: yamlObj.RunIndexCreation,
	}
}
