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
	"errors"
	"net/url"
)

// UserTweetsRequest carries the query parameters of one timeline page
// read. Empty optional fields are left off the request entirely; the
// caller controls the distinction between "omit" and "send blank" through
// the Params override.
type UserTweetsRequest struct {
	UserID string

	// Params is the normalized query parameter set (already cleaned by the
	// caller). Field supersets and expansions are added on top.
	Params map[string]string
}

type UserTweetsResponse struct {
	Data     []Tweet `json:"data,omitempty"`
	Includes *struct {
		Users  []User  `json:"users,omitempty"`
		Tweets []Tweet `json:"tweets,omitempty"`
	} `json:"includes,omitempty"`
	Meta *struct {
		ResultCount   int    `json:"result_count"`
		NewestID      string `json:"newest_id,omitempty"`
		OldestID      string `json:"oldest_id,omitempty"`
		NextToken     string `json:"next_token,omitempty"`
		PreviousToken string `json:"previous_token,omitempty"`
	} `json:"meta,omitempty"`
}

// NextToken returns the pagination cursor for the following page, or ""
// when the timeline is exhausted.
func (r *UserTweetsResponse) NextToken() string {
	if r == nil || r.Meta == nil {
		return ""
	}
	return r.Meta.NextToken
}

// IncludedUsers returns the expanded author records, nil-safe.
func (r *UserTweetsResponse) IncludedUsers() []User {
	if r == nil || r.Includes == nil {
		return nil
	}
	return r.Includes.Users
}

// IncludedTweets returns the referenced tweets attached to the page,
// nil-safe.
func (r *UserTweetsResponse) IncludedTweets() []Tweet {
	if r == nil || r.Includes == nil {
		return nil
	}
	return r.Includes.Tweets
}

// GetUserTweets reads one page of a user timeline with the full field
// superset attached.
func (c *Client) GetUserTweets(ctx context.Context, req UserTweetsRequest) (*UserTweetsResponse, *RateLimit, error) {
	if req.UserID == "" {
		return nil, nil, errors.New("invalid parameter: user id required")
	}

	params := make(map[string]string, len(req.Params)+6)
	for k, v := range req.Params {
		params[k] = v
	}
	setRequestParam(params, "tweet.fields", TweetFields)
	setRequestParam(params, "media.fields", MediaFields)
	setRequestParam(params, "poll.fields", PollFields)
	setRequestParam(params, "user.fields", UserFields)
	setRequestParam(params, "place.fields", PlaceFields)
	setRequestParam(params, "expansions", Expansions)

	var r UserTweetsResponse
	rate, err := c.Get(ctx, "users/"+url.PathEscape(req.UserID)+"/tweets", params, &r)
	if err != nil {
		return nil, rate, err
	}

	return &r, rate, nil
}
