package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

const (
	serverConfigKey = "idlease.server"
	clientConfigKey = "idlease.client"
)

// ServerConfig configures the allocator daemon. Pool bounds and the lease
// timeout are fixed for the process lifetime.
type ServerConfig struct {
	Host           string `mapstructure:"host"             envconfig:"HOST"       default:"0.0.0.0"`
	Port           string `mapstructure:"port"             envconfig:"PORT"       default:"3000"`
	IDMin          int    `mapstructure:"id_min"           envconfig:"ID_MIN"     default:"1"`
	IDMax          int    `mapstructure:"id_max"           envconfig:"ID_MAX"     default:"65535"`
	LeaseTimeoutMs int64  `mapstructure:"lease_timeout_ms" envconfig:"TIMEOUT"    default:"3000"`
	LogLevel       string `mapstructure:"log_level"        envconfig:"LOG_LEVEL"  default:"info"`
	LogFile        string `mapstructure:"log_file"         envconfig:"LOG_FILE"`
	LogMaxSizeMB   int    `mapstructure:"log_max_size_mb"  envconfig:"LOG_MAX_MB" default:"100"`
}

func (c ServerConfig) String() string {
	return fmt.Sprintf(`{
Host: %s
Port: %s
IDMin: %d
IDMax: %d
LeaseTimeoutMs: %d
LogLevel: %s
LogFile: %s
}`,
		c.Host,
		c.Port,
		c.IDMin,
		c.IDMax,
		c.LeaseTimeoutMs,
		c.LogLevel,
		c.LogFile,
	)
}

// ClientConfig configures the CLI client.
type ClientConfig struct {
	ServerHost string `mapstructure:"server_host" envconfig:"SERVER_HOST" default:"127.0.0.1"`
	ServerPort string `mapstructure:"server_port" envconfig:"SERVER_PORT" default:"3000"`
}

func (c ClientConfig) String() string {
	return fmt.Sprintf(`{
ServerHost: %s
ServerPort: %s
}`, c.ServerHost, c.ServerPort)
}

// GetServerConfig loads the daemon configuration. With a config file the
// idlease.server section is unmarshalled from it; with an empty path the
// configuration is read from the environment (HOST, PORT, ID_MIN, ID_MAX,
// TIMEOUT, ...) with the documented defaults.
func GetServerConfig(configFile string) (*ServerConfig, error) {
	var result ServerConfig

	if configFile == "" {
		if err := envconfig.Process("", &result); err != nil {
			return nil, fmt.Errorf("failed to read config from environment: %w", err)
		}
		return &result, nil
	}

	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	serverConfig := viper.Sub(serverConfigKey)
	if serverConfig == nil {
		return nil, fmt.Errorf("server configuration not found")
	}

	if err := serverConfig.Unmarshal(&result); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return &result, nil
}

// GetClientConfig loads the client configuration, from the idlease.client
// section of a config file or from the environment when no file is given.
func GetClientConfig(configFile string) (*ClientConfig, error) {
	var result ClientConfig

	if configFile == "" {
		if err := envconfig.Process("", &result); err != nil {
			return nil, fmt.Errorf("failed to read config from environment: %w", err)
		}
		return &result, nil
	}

	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	clientConfig := viper.Sub(clientConfigKey)
	if clientConfig == nil {
		return nil, fmt.Errorf("client configuration not found")
	}

	if err := clientConfig.Unmarshal(&result); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return &result, nil
}
