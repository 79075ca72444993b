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
	"context"
	"errors"

	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/twitter"
)

const integrationName = "Twitter-v2"

// Integration is the slice of the timeline API the pipeline consumes.
// *twitter.Client satisfies it; tests substitute fakes.
type Integration interface {
	GetUserTweets(ctx context.Context, req twitter.UserTweetsRequest) (*twitter.UserTweetsResponse, *twitter.RateLimit, error)
	GetUserByUsername(ctx context.Context, username string) (*twitter.User, *twitter.RateLimit, error)
}

// Fetcher wraps one paginated timeline read and normalizes its failure
// modes. A page with zero matches is a valid empty page, not an error.
type Fetcher struct {
	api Integration
}

func NewFetcher(api Integration) *Fetcher {
	return &Fetcher{
		api: api,
	}
}

func (f *Fetcher) FetchPage(ctx context.Context, userID string, params map[string]string) (*twitter.UserTweetsResponse, error) {
	resp, _, err := f.api.GetUserTweets(ctx, twitter.UserTweetsRequest{
		UserID: userID,
		Params: params,
	})
	if err != nil {
		return nil, asIntegrationError(err)
	}
	return resp, nil
}

func asIntegrationError(err error) *IntegrationError {
	var apiErr *twitter.APIError
	if errors.As(err, &apiErr) {
		return &IntegrationError{
			Integration: integrationName,
			StatusCode:  apiErr.StatusCode,
			Detail:      apiErr.Detail(),
			cause:       apiErr,
		}
	}
	return &IntegrationError{
		Integration: integrationName,
		cause:       err,
	}
}
