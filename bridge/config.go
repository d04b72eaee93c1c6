package bridge

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultVolume = 1.0

// Config is the flat, validated configuration the rest of the bridge
// operates on. LoadConfig produces it from a YAML file.
type Config struct {
	SideAEndpoint        string
	SideAIdentity        string
	SideAServerPassword  string
	SideAChannelID       int64
	SideAChannelName     string
	SideAChannelPassword string
	SideADisplayName     string

	SideBToken string

	Verbose int
	Volume  float64
}

type yamlConfig struct {
	SideA struct {
		Endpoint        string `yaml:"endpoint"`
		Identity        string `yaml:"identity"`
		ServerPassword  string `yaml:"server_password"`
		ChannelID       int64  `yaml:"channel_id"`
		ChannelName     string `yaml:"channel_name"`
		ChannelPassword string `yaml:"channel_password"`
		DisplayName     string `yaml:"display_name"`
	} `yaml:"side_a"`
	SideB struct {
		Token string `yaml:"token"`
	} `yaml:"side_b"`
	Verbose int     `yaml:"verbose"`
	Volume  float64 `yaml:"volume"`
}

// LoadConfig reads and validates the bridge's YAML configuration file.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		Volume: defaultVolume,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yc.SideA.Endpoint == "" {
		return Config{}, errors.New("side_a.endpoint is required")
	}
	cfg.SideAEndpoint = yc.SideA.Endpoint

	if yc.SideA.Identity == "" {
		return Config{}, errors.New("side_a.identity is required")
	}
	cfg.SideAIdentity = yc.SideA.Identity

	cfg.SideAServerPassword = yc.SideA.ServerPassword
	cfg.SideAChannelID = yc.SideA.ChannelID
	cfg.SideAChannelName = yc.SideA.ChannelName
	cfg.SideAChannelPassword = yc.SideA.ChannelPassword
	cfg.SideADisplayName = yc.SideA.DisplayName

	if yc.SideB.Token == "" {
		return Config{}, errors.New("side_b.token is required")
	}
	cfg.SideBToken = yc.SideB.Token

	if yc.Verbose > 0 {
		cfg.Verbose = yc.Verbose
	}
	if yc.Volume > 0 {
		cfg.Volume = yc.Volume
	}

	return cfg, nil
}
