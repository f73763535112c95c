package domain

type Config struct {
	FQDN     string `yaml:"fqdn"`
	NodeName string `yaml:"nodeName"`
}
