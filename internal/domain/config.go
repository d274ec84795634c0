package domain

type Config struct {
	FQDN          string `yaml:"fqdn"`
	BaseURL       string `yaml:"baseUrl"`
	SessionSecret string `yaml:"sessionSecret"`
}
