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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/db"
	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/harvest"
	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/host"
	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/logger"
	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/server"
	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/storage"
	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/twitter"
)

var errServerDisabled = errors.New("server.enabled is false and no --task file was given")

type Command struct {
	Config *Config
}

// taskFile is the one-shot input format for --task runs: the task
// coordinates plus the same action input the server accepts.
type taskFile struct {
	Workspace struct {
		ID int64 `json:"id"`
	} `json:"workspace"`
	Task struct {
		ID int64 `json:"id"`
	} `json:"task"`
	Input harvest.RunInput `json:"input"`
}

// Serve runs the agent as a platform-facing HTTP action server. Task
// logs, statuses and human assistance all round-trip through the
// platform API.
func (c *Command) Serve() error {
	log, err := logger.Build(c.Config.LogLevel(), pathOrEmpty(c.Config.Logger.Info), pathOrEmpty(c.Config.Logger.Error))
	if err != nil {
		return err
	}
	defer log.Sync()
	sugared := log.Sugar()

	watchLogReopenSignal(log, sugared)

	ctx := context.Background()

	api := c.twitterClient(ctx)
	runtime := host.NewPlatform(c.Config.Platform.BaseURL, c.Config.Platform.APIKey, sugared)
	runner := harvest.NewRunner(api, runtime, sugared)

	stores, closeStores, err := c.storeFactory(ctx, runtime, sugared)
	if err != nil {
		return err
	}
	defer closeStores()

	srv := server.New(runner, stores, sugared)
	sugared.Infow("server start", "addr", c.Config.Server.Addr)
	return srv.ListenAndServe(c.Config.Server.Addr)
}

// RunTask executes a single task from a JSON file against the local
// runtime and prints the run summary. Task logs and artifacts are
// journaled to the workspace database.
func (c *Command) RunTask(path string) error {
	log, err := logger.Build(c.Config.LogLevel(), pathOrEmpty(c.Config.Logger.Info), pathOrEmpty(c.Config.Logger.Error))
	if err != nil {
		return err
	}
	defer log.Sync()
	sugared := log.Sugar()

	task, err := loadTaskFile(path)
	if err != nil {
		return err
	}

	journal, err := db.Open(c.Config.Workspace.DBPath)
	if err != nil {
		return err
	}
	defer journal.Close()

	if err := os.MkdirAll(c.Config.Workspace.Dir, 0o755); err != nil {
		return err
	}

	ctx := context.Background()

	api := c.twitterClient(ctx)
	runtime := host.NewLocal(journal, c.Config.Workspace.Dir, sugared)
	runner := harvest.NewRunner(api, runtime, sugared)

	stores, closeStores, err := c.storeFactory(ctx, runtime, sugared)
	if err != nil {
		return err
	}
	defer closeStores()

	ref := host.TaskRef{WorkspaceID: task.Workspace.ID, TaskID: task.Task.ID}
	result, err := runner.Run(ctx, ref, task.Input, stores(ref))
	if err != nil {
		fmt.Println(result.Summary)
		return err
	}

	fmt.Println(result.Summary)
	return nil
}

func (c *Command) twitterClient(ctx context.Context) *twitter.Client {
	if c.Config.Twitter.BearerToken != "" {
		return twitter.NewClient(c.Config.Twitter.BearerToken)
	}
	return twitter.NewUserContextClient(ctx,
		c.Config.Twitter.ConsumerKey,
		c.Config.Twitter.ConsumerSecret,
		c.Config.Twitter.AccessToken,
		c.Config.Twitter.AccessSecret)
}

// storeFactory builds the artifact store selector for the configured
// backend. The returned close func releases any backend client.
func (c *Command) storeFactory(ctx context.Context, runtime host.Runtime, sugared *zap.SugaredLogger) (server.StoreFactory, func(), error) {
	noop := func() {}

	switch c.Config.Artifacts.Backend {
	case "dir":
		store := storage.NewLocal(c.Config.Artifacts.Dir)
		return func(host.TaskRef) storage.ArtifactStore { return store }, noop, nil

	case "gcs":
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, nil, err
		}
		store := storage.NewBucket(client, c.Config.Artifacts.Bucket, sugared)
		return func(host.TaskRef) storage.ArtifactStore { return store }, func() { client.Close() }, nil

	default:
		return func(ref host.TaskRef) storage.ArtifactStore {
			return storage.NewUpload(runtime, ref)
		}, noop, nil
	}
}

func loadTaskFile(path string) (*taskFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	task := &taskFile{}
	if err := json.Unmarshal(content, task); err != nil {
		return nil, err
	}
	return task, nil
}

func pathOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
