package main

import (
	"errors"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/mullak99/MCTools/database"
)

var ErrDatasourceNotLoaded = errors.New("could not load configuration: no database source specified")

// File is the yaml configuration file layout.
type File struct {
	MCTools Config `yaml:"mctools"`
}

type Config struct {
	Database   database.RegistrableComponentConfig
	API        APIConfig
	Upstream   UpstreamConfig
	ScratchDir string `yaml:"scratchDir"`
}

type APIConfig struct {
	Port           int    `yaml:"port"`
	HealthPort     int    `yaml:"healthPort"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	AdminToken     string `yaml:"adminToken"`
	CertFile       string `yaml:"certFile"`
	KeyFile        string `yaml:"keyFile"`
	CAFile         string `yaml:"caFile"`
}

// UpstreamConfig overrides the version feed locations, mostly useful for
// tests and air-gapped deployments. Empty values keep the defaults.
type UpstreamConfig struct {
	JavaManifestURL    string `yaml:"javaManifestURL"`
	BedrockReleasesURL string `yaml:"bedrockReleasesURL"`
}

func DefaultConfig() Config {
	return Config{
		Database: database.RegistrableComponentConfig{
			Type: "pgsql",
		},
		API: APIConfig{
			Port:           6060,
			HealthPort:     6061,
			TimeoutSeconds: 900,
		},
	}
}

func LoadConfig(path string) (config *Config, err error) {
	var cfgFile File
	cfgFile.MCTools = DefaultConfig()
	if path == "" {
		return &cfgFile.MCTools, nil
	}

	d, err := os.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return
	}

	err = yaml.Unmarshal(d, &cfgFile)
	if err != nil {
		return
	}
	config = &cfgFile.MCTools
	return
}
