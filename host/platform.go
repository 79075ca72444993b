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

package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"
)

// Platform talks to the hosting agent platform over JSON HTTP. Calls are
// retried; the platform treats them as idempotent upserts.
type Platform struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

func NewPlatform(baseURL, apiKey string, logger *zap.SugaredLogger) *Platform {
	return &Platform{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (p *Platform) AddTaskLog(ctx context.Context, ref TaskRef, severity Severity, body string) error {
	payload := map[string]any{
		"severity": severity,
		"type":     "text",
		"body":     body,
	}
	path := fmt.Sprintf("/workspaces/%d/tasks/%d/logs", ref.WorkspaceID, ref.TaskID)
	return p.postJSON(ctx, path, payload, nil)
}

func (p *Platform) SetTaskStatus(ctx context.Context, ref TaskRef, status Status) error {
	payload := map[string]any{
		"status": status,
	}
	path := fmt.Sprintf("/workspaces/%d/tasks/%d/status", ref.WorkspaceID, ref.TaskID)
	return p.postJSON(ctx, path, payload, nil)
}

func (p *Platform) UploadFile(ctx context.Context, ref TaskRef, path string, content []byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("path", path); err != nil {
		return err
	}
	if err := mw.WriteField("taskIds", fmt.Sprintf("%d", ref.TaskID)); err != nil {
		return err
	}
	fw, err := mw.CreateFormFile("file", path)
	if err != nil {
		return err
	}
	if _, err := fw.Write(content); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("/workspaces/%d/file", ref.WorkspaceID)
	return p.do(ctx, http.MethodPost, endpoint, buf.Bytes(), mw.FormDataContentType(), nil)
}

func (p *Platform) RequestHumanAssistance(ctx context.Context, ref TaskRef, question string) error {
	payload := map[string]any{
		"type":     "text",
		"question": question,
	}
	path := fmt.Sprintf("/workspaces/%d/tasks/%d/human-assistance", ref.WorkspaceID, ref.TaskID)
	return p.postJSON(ctx, path, payload, nil)
}

func (p *Platform) LastHumanResponse(ctx context.Context, ref TaskRef) (string, bool, error) {
	var task struct {
		HumanAssistanceRequests []struct {
			HumanResponse *string `json:"humanResponse"`
		} `json:"humanAssistanceRequests"`
	}
	path := fmt.Sprintf("/workspaces/%d/tasks/%d", ref.WorkspaceID, ref.TaskID)
	if err := p.do(ctx, http.MethodGet, path, nil, "", &task); err != nil {
		return "", false, err
	}
	for i := len(task.HumanAssistanceRequests) - 1; i >= 0; i-- {
		if resp := task.HumanAssistanceRequests[i].HumanResponse; resp != nil {
			return *resp, true, nil
		}
	}
	return "", false, nil
}

func (p *Platform) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.do(ctx, http.MethodPost, path, body, "application/json", out)
}

func (p *Platform) do(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	return retry.Do(
		func() error {
			var reader io.Reader
			if body != nil {
				reader = bytes.NewReader(body)
			}
			req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			if contentType != "" {
				req.Header.Set("Content-Type", contentType)
			}
			req.Header.Set("Authorization", "Bearer "+p.apiKey)

			resp, err := p.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("platform request: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 400 {
				detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
				err := fmt.Errorf("platform responded %s: %s", resp.Status, strings.TrimSpace(string(detail)))
				if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
					return retry.Unrecoverable(err)
				}
				return err
			}

			if out != nil {
				if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
					return retry.Unrecoverable(fmt.Errorf("decode platform response: %w", err))
				}
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.MaxJitter(2*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			p.logger.Warnw("platform call retry", "attempt", n, "path", path, "error", err)
		}),
	)
}
