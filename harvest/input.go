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

package harvest

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/webhook"
)

const (
	minResults     = 5
	maxResults     = 100
	defaultResults = 100
)

// RunInput is the invocation payload of one harvesting run.
type RunInput struct {
	UserID          string        `json:"user_id,omitempty"`
	Username        string        `json:"username,omitempty"`
	MaxResults      int           `json:"max_results,omitempty"`
	StartTime       string        `json:"start_time,omitempty"`
	EndTime         string        `json:"end_time,omitempty"`
	SinceID         string        `json:"since_id,omitempty"`
	UntilID         string        `json:"until_id,omitempty"`
	PaginationToken string        `json:"pagination_token,omitempty"`
	WebhookURL      string        `json:"webhook_url,omitempty"`
	WebhookAuth     *webhook.Auth `json:"webhook_auth,omitempty"`
}

// Validate normalizes defaults and rejects malformed input before any
// fetch happens.
func (in *RunInput) Validate() error {
	if in.MaxResults == 0 {
		in.MaxResults = defaultResults
	}
	if in.MaxResults < minResults || in.MaxResults > maxResults {
		return fmt.Errorf("max_results must be between %d and %d", minResults, maxResults)
	}

	for _, ts := range []struct{ name, value string }{
		{"start_time", in.StartTime},
		{"end_time", in.EndTime},
	} {
		if ts.value == "" {
			continue
		}
		if _, err := time.Parse(time.RFC3339, ts.value); err != nil {
			return fmt.Errorf("%s must be an RFC3339 timestamp: %w", ts.name, err)
		}
	}

	if in.WebhookURL != "" {
		u, err := url.Parse(in.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.New("webhook_url must be a valid URL")
		}
		if in.WebhookAuth == nil {
			return errors.New("webhook_auth is required when webhook_url is set")
		}
		if !in.WebhookAuth.Valid() {
			return errors.New("webhook_auth.type must be one of bearer, basic, apiKey")
		}
	}

	return nil
}

// queryParams assembles one page's parameter set around the given
// cursor. Unset values stay off the wire.
func (in *RunInput) queryParams(cursor string) map[string]string {
	return CleanQueryParams(map[string]*string{
		"max_results":      param(strconv.Itoa(in.MaxResults)),
		"pagination_token": param(cursor),
		"start_time":       param(in.StartTime),
		"end_time":         param(in.EndTime),
		"since_id":         param(in.SinceID),
		"until_id":         param(in.UntilID),
	})
}

// Subject names the run's target for summaries, whichever identifier
// was supplied.
func (in *RunInput) Subject() string {
	if in.UserID != "" {
		return in.UserID
	}
	return in.Username
}
