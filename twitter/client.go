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

package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
)

const (
	defaultAPIBase = "https://api.twitter.com/2/"

	requestTimeout = 15 * time.Second
)

type Client struct {
	baseURL    string
	bearer     string
	httpClient *http.Client
}

type RateLimit struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

type Errors []struct {
	Title   string `json:"title"`
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type APIError struct {
	Errors     Errors
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	if detail := e.Detail(); detail != "" {
		return e.Status + ": " + strings.ReplaceAll(detail, "\n", "; ")
	}
	return e.Status
}

// Detail joins the upstream error details for embedding in messages
// surfaced to the task log.
func (e *APIError) Detail() string {
	var sb strings.Builder
	for _, er := range e.Errors {
		var d string
		switch {
		case er.Detail != "":
			d = er.Detail
		case er.Message != "":
			d = er.Message
		case er.Title != "":
			d = er.Title
		default:
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(d)
	}
	return sb.String()
}

// NewClient returns an app-auth client using a bearer token.
func NewClient(bearer string) *Client {
	return &Client{
		baseURL: defaultAPIBase,
		bearer:  bearer,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// NewUserContextClient returns a client whose requests are signed with
// OAuth1 user-context credentials instead of an app bearer token.
func NewUserContextClient(ctx context.Context, consumerKey, consumerSecret, accessToken, accessSecret string) *Client {
	config := oauth1.NewConfig(consumerKey, consumerSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(ctx, token)
	httpClient.Timeout = requestTimeout
	return &Client{
		baseURL:    defaultAPIBase,
		httpClient: httpClient,
	}
}

// SetBaseURL overrides the API endpoint base, mainly for tests.
func (c *Client) SetBaseURL(base string) {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	c.baseURL = base
}

func (c *Client) Get(ctx context.Context, api string, params map[string]string, out interface{}) (*RateLimit, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+api, nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	for key, value := range params {
		q.Add(key, value)
	}
	req.URL.RawQuery = q.Encode()

	return c.execRequest(req, out)
}

func (c *Client) execRequest(req *http.Request, out interface{}) (*RateLimit, error) {
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rateErr error
	rate := &RateLimit{}
	if ls := resp.Header.Get("X-Rate-Limit-Limit"); ls != "" {
		rate.Limit, rateErr = strconv.Atoi(ls)
		if rateErr != nil {
			return nil, fmt.Errorf("invalid rate limit header: %w", rateErr)
		}
	}

	if rs := resp.Header.Get("X-Rate-Limit-Remaining"); rs != "" {
		rate.Remaining, rateErr = strconv.Atoi(rs)
		if rateErr != nil {
			return nil, fmt.Errorf("invalid rate limit header: %w", rateErr)
		}
	}

	if rs := resp.Header.Get("X-Rate-Limit-Reset"); rs != "" {
		rn, err := strconv.Atoi(rs)
		if err != nil {
			return nil, fmt.Errorf("invalid rate limit header: %w", err)
		}
		rate.Reset = time.Unix(int64(rn), 0)
	}

	return rate, parseResponse(resp, out)
}

func parseResponse(resp *http.Response, out interface{}) error {
	var m map[string]json.RawMessage

	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return err
	}

	var errs Errors
	if raw, ok := m["errors"]; ok {
		if err := json.Unmarshal(raw, &errs); err != nil {
			return err
		}
		delete(m, "errors")
	}

	b, err := json.Marshal(m)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(b, out); err != nil {
		return err
	}

	status := resp.StatusCode / 100
	if len(errs) > 0 || status == 4 || status == 5 {
		return &APIError{
			Errors:     errs,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	return nil
}

func setRequestParam(m map[string]string, key string, values []string) {
	if len(values) > 0 {
		m[key] = strings.Join(values, ",")
	}
}
