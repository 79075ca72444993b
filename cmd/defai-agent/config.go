/*
 *  Copyright 2025 qitoi
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */

package main

import (
	"errors"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Twitter   TwitterConfig   `yaml:"twitter"`
	Platform  PlatformConfig  `yaml:"platform"`
	Server    ServerConfig    `yaml:"server"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Logger    LoggerConfig    `yaml:"logger"`
}

type TwitterConfig struct {
	BearerToken    string `yaml:"bearer_token"`
	ConsumerKey    string `yaml:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret"`
	AccessToken    string `yaml:"access_token"`
	AccessSecret   string `yaml:"access_secret"`
}

type PlatformConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr,omitempty"`
}

type WorkspaceConfig struct {
	Dir    string `yaml:"dir"`
	DBPath string `yaml:"db_path"`
}

// ArtifactsConfig selects where file-mode conversation batches land:
// "workspace" uploads through the runtime, "dir" writes a local
// directory, "gcs" writes a bucket.
type ArtifactsConfig struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir,omitempty"`
	Bucket  string `yaml:"bucket,omitempty"`
}

type LoggerConfig struct {
	Level *LogLevel `yaml:"level"`
	Info  *string   `yaml:"info"`
	Error *string   `yaml:"error"`
}

type LogLevel zapcore.Level

func (l *LogLevel) MarshalYAML() (interface{}, error) {
	return zapcore.Level(*l).MarshalText()
}

func (l *LogLevel) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return err
	}
	*l = LogLevel(level)
	return nil
}

func (c *Config) LogLevel() zapcore.Level {
	if c.Logger.Level == nil {
		return zapcore.InfoLevel
	}
	return zapcore.Level(*c.Logger.Level)
}

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := &Config{}
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, err
	}

	if config.Workspace.Dir == "" {
		config.Workspace.Dir = "./workspace"
	}
	if config.Workspace.DBPath == "" {
		config.Workspace.DBPath = "./defai-agent.db"
	}
	if config.Artifacts.Backend == "" {
		config.Artifacts.Backend = "workspace"
	}

	return config, nil
}

func CheckValidConfig(config *Config) error {
	hasBearer := config.Twitter.BearerToken != ""
	hasUserContext := config.Twitter.ConsumerKey != "" &&
		config.Twitter.ConsumerSecret != "" &&
		config.Twitter.AccessToken != "" &&
		config.Twitter.AccessSecret != ""
	if !hasBearer && !hasUserContext {
		return errors.New("invalid config: twitter requires bearer_token or the full consumer/access credential set")
	}

	if config.Server.Enabled {
		if config.Server.Addr == "" {
			return errors.New("invalid config: server.addr")
		}
		if config.Platform.BaseURL == "" {
			return errors.New("invalid config: platform.base_url")
		}
		if config.Platform.APIKey == "" {
			return errors.New("invalid config: platform.api_key")
		}
	}

	switch config.Artifacts.Backend {
	case "workspace":
	case "dir":
		if config.Artifacts.Dir == "" {
			return errors.New("invalid config: artifacts.dir")
		}
	case "gcs":
		if config.Artifacts.Bucket == "" {
			return errors.New("invalid config: artifacts.bucket")
		}
	default:
		return errors.New("invalid config: artifacts.backend must be workspace, dir or gcs")
	}

	if config.Logger.Info != nil && *config.Logger.Info == "" {
		return errors.New("invalid config: logger.info")
	}
	if config.Logger.Error != nil && *config.Logger.Error == "" {
		return errors.New("invalid config: logger.error")
	}

	return nil
}
