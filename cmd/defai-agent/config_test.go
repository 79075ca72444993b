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
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
twitter:
  bearer_token: token
server:
  enabled: true
  addr: ":8080"
platform:
  base_url: https://api.openserv.ai
  api_key: key
logger:
  level: debug
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if config.Twitter.BearerToken != "token" {
		t.Errorf("bearer token, actual: %s", config.Twitter.BearerToken)
	}
	if config.LogLevel() != zapcore.DebugLevel {
		t.Errorf("log level, actual: %v, expected: debug", config.LogLevel())
	}
	// Unset sections fall back to defaults.
	if config.Artifacts.Backend != "workspace" {
		t.Errorf("artifacts backend default, actual: %s", config.Artifacts.Backend)
	}
	if config.Workspace.Dir != "./workspace" {
		t.Errorf("workspace dir default, actual: %s", config.Workspace.Dir)
	}

	if err := CheckValidConfig(config); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestCheckValidConfig(t *testing.T) {
	cases := []struct {
		name   string
		config Config
	}{
		{"no twitter credentials", Config{Artifacts: ArtifactsConfig{Backend: "workspace"}}},
		{"partial oauth credentials", Config{
			Twitter:   TwitterConfig{ConsumerKey: "k", ConsumerSecret: "s"},
			Artifacts: ArtifactsConfig{Backend: "workspace"},
		}},
		{"server without addr", Config{
			Twitter:   TwitterConfig{BearerToken: "t"},
			Server:    ServerConfig{Enabled: true},
			Platform:  PlatformConfig{BaseURL: "u", APIKey: "k"},
			Artifacts: ArtifactsConfig{Backend: "workspace"},
		}},
		{"server without platform key", Config{
			Twitter:   TwitterConfig{BearerToken: "t"},
			Server:    ServerConfig{Enabled: true, Addr: ":8080"},
			Platform:  PlatformConfig{BaseURL: "u"},
			Artifacts: ArtifactsConfig{Backend: "workspace"},
		}},
		{"dir backend without dir", Config{
			Twitter:   TwitterConfig{BearerToken: "t"},
			Artifacts: ArtifactsConfig{Backend: "dir"},
		}},
		{"gcs backend without bucket", Config{
			Twitter:   TwitterConfig{BearerToken: "t"},
			Artifacts: ArtifactsConfig{Backend: "gcs"},
		}},
		{"unknown backend", Config{
			Twitter:   TwitterConfig{BearerToken: "t"},
			Artifacts: ArtifactsConfig{Backend: "s3"},
		}},
	}
	for _, c := range cases {
		if err := CheckValidConfig(&c.config); err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}

	valid := Config{
		Twitter:   TwitterConfig{ConsumerKey: "k", ConsumerSecret: "s", AccessToken: "a", AccessSecret: "x"},
		Artifacts: ArtifactsConfig{Backend: "dir", Dir: "/tmp/artifacts"},
	}
	if err := CheckValidConfig(&valid); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
