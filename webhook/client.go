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

// Package webhook posts JSON payloads to an external endpoint with one
// of three authentication schemes.
package webhook

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 5 * time.Second

type AuthType string

const (
	AuthBearer AuthType = "bearer"
	AuthBasic  AuthType = "basic"
	AuthAPIKey AuthType = "apiKey"
)

// Auth selects one authentication scheme per run. Credentials missing
// for the selected scheme leave the request unauthenticated; rejecting
// that is the endpoint's call.
type Auth struct {
	Type         AuthType `json:"type"`
	Token        string   `json:"token,omitempty"`
	Username     string   `json:"username,omitempty"`
	Password     string   `json:"password,omitempty"`
	APIKey       string   `json:"apiKey,omitempty"`
	APIKeyHeader string   `json:"apiKeyHeader,omitempty"`
}

func (a *Auth) Valid() bool {
	switch a.Type {
	case AuthBearer, AuthBasic, AuthAPIKey:
		return true
	}
	return false
}

func (a *Auth) apply(h http.Header) {
	if a == nil {
		return
	}
	switch a.Type {
	case AuthBearer:
		if a.Token != "" {
			h.Set("Authorization", "Bearer "+a.Token)
		}
	case AuthBasic:
		if a.Username != "" && a.Password != "" {
			credential := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
			h.Set("Authorization", "Basic "+credential)
		}
	case AuthAPIKey:
		if a.APIKey != "" && a.APIKeyHeader != "" {
			h.Set(a.APIKeyHeader, a.APIKey)
		}
	}
}

type Client struct {
	auth       *Auth
	httpClient *http.Client
}

func NewClient(auth *Auth) *Client {
	return &Client{
		auth: auth,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// RequestError is a failed POST: non-2xx status or transport error, with
// whatever detail the endpoint returned.
type RequestError struct {
	StatusCode int
	Message    string
	cause      error
}

func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status: %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.cause
}

// Post sends payload as a JSON body and drains the response. Any non-2xx
// response is an error carrying the endpoint's message, detail or error
// field when one is present.
func (c *Client) Post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &RequestError{Message: "encode payload: " + err.Error(), cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &RequestError{Message: err.Error(), cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Custom-Header", "OpenServ agent")
	c.auth.apply(req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Message: err.Error(), cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{
			StatusCode: resp.StatusCode,
			Message:    responseMessage(resp),
		}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// responseMessage digs a human-readable reason out of an error response
// body, falling back to the HTTP status text.
func responseMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(data) > 0 {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
			Detail  string `json:"detail"`
		}
		if json.Unmarshal(data, &payload) == nil {
			switch {
			case payload.Message != "":
				return payload.Message
			case payload.Error != "":
				return payload.Error
			case payload.Detail != "":
				return payload.Detail
			}
		}
		if s := strings.TrimSpace(string(data)); s != "" && len(s) <= 200 {
			return s
		}
	}
	return resp.Status
}
