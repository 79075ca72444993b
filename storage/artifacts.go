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

// Package storage persists conversation batch artifacts. Names are
// deterministic per user and cursor, so writing the same batch twice
// overwrites rather than duplicates.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"

	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/host"
)

// ArtifactStore is where one page's conversation batch lands in file
// delivery mode.
type ArtifactStore interface {
	Put(ctx context.Context, name string, content []byte) error
}

// ValidName rejects names that could escape the store root.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\")
}

// Local writes artifacts to a directory.
type Local struct {
	dir string
}

func NewLocal(dir string) *Local {
	return &Local{dir: dir}
}

func (s *Local) Put(_ context.Context, name string, content []byte) error {
	if !ValidName(name) {
		return fmt.Errorf("invalid artifact name: %q", name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, name), content, 0o644)
}

// Bucket writes artifacts to a Google Cloud Storage bucket, retrying
// transient failures.
type Bucket struct {
	client *gcs.Client
	bucket string
	logger *zap.SugaredLogger
}

func NewBucket(client *gcs.Client, bucket string, logger *zap.SugaredLogger) *Bucket {
	return &Bucket{
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

func (s *Bucket) Put(ctx context.Context, name string, content []byte) error {
	if !ValidName(name) {
		return fmt.Errorf("invalid artifact name: %q", name)
	}
	return retry.Do(
		func() error {
			w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
			if _, err := w.Write(content); err != nil {
				if closeErr := w.Close(); closeErr != nil {
					s.logger.Warnw("close bucket writer after write error", "error", closeErr)
				}
				return fmt.Errorf("write artifact: %w", err)
			}
			if err := w.Close(); err != nil {
				return fmt.Errorf("close artifact writer: %w", err)
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(time.Minute),
		retry.MaxJitter(5*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Infow("retrying artifact write", "attempt", n, "name", name, "error", err)
		}),
	)
}

// Upload forwards artifacts to the hosting platform's workspace file
// sink.
type Upload struct {
	runtime host.Runtime
	ref     host.TaskRef
}

func NewUpload(runtime host.Runtime, ref host.TaskRef) *Upload {
	return &Upload{
		runtime: runtime,
		ref:     ref,
	}
}

func (s *Upload) Put(ctx context.Context, name string, content []byte) error {
	if !ValidName(name) {
		return fmt.Errorf("invalid artifact name: %q", name)
	}
	if s.runtime == nil {
		return errors.New("no runtime configured for upload")
	}
	return s.runtime.UploadFile(ctx, s.ref, name, content)
}
