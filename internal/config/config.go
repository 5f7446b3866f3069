// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository.
package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	Facebook   Facebook   `yaml:"facebook"`
	TokenStore TokenStore `yaml:"tokenStore"`
}

type Facebook struct {
	AppID        string              `yaml:"appID"`
	GraphVersion string              `yaml:"graphVersion" default:"v19.0"`
	ClientToken  commoncfg.SourceRef `yaml:"clientToken"`
	AccessToken  commoncfg.SourceRef `yaml:"accessToken"`
	CacheTTL     time.Duration       `yaml:"cacheTTL"`
	DeviceLogin  DeviceLogin         `yaml:"deviceLogin"`
}

type DeviceLogin struct {
	Enabled      bool          `yaml:"enabled"`
	PollInterval time.Duration `yaml:"pollInterval"`
	Timeout      time.Duration `yaml:"timeout" default:"7m"`
}

type TokenStore struct {
	Path string `yaml:"path"`
}
