package config

import (
	"os"

	"github.com/go-yaml/yaml"

	"github.com/openprofile/openprofile/internal/domain"
)

type Config struct {
	NodeInfo NodeInfo `yaml:"nodeInfo"`
	Server   Server   `yaml:"server"`
}

type NodeInfo struct {
	FQDN          string `yaml:"fqdn"`
	BaseURL       string `yaml:"baseUrl"`
	SessionSecret string `yaml:"sessionSecret"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.Listen == "" {
		config.Server.Listen = ":8000"
	}
	if config.NodeInfo.BaseURL == "" && config.NodeInfo.FQDN != "" {
		config.NodeInfo.BaseURL = "https://" + config.NodeInfo.FQDN
	}

	return config, nil
}

// Domain converts the node section into the domain-level config
// passed to services.
func (c Config) Domain() domain.Config {
	return domain.Config{
		FQDN:          c.NodeInfo.FQDN,
		BaseURL:       c.NodeInfo.BaseURL,
		SessionSecret: c.NodeInfo.SessionSecret,
	}
}
