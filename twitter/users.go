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
	"net/url"
	"time"
)

type User struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Username        string  `json:"username"`
	Description     *string `json:"description,omitempty"`
	Location        *string `json:"location,omitempty"`
	PinnedTweetID   *string `json:"pinned_tweet_id,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
	Protected       *bool   `json:"protected,omitempty"`
	PublicMetrics   *struct {
		FollowersCount int64 `json:"followers_count,omitempty"`
		FollowingCount int64 `json:"following_count,omitempty"`
		TweetCount     int64 `json:"tweet_count,omitempty"`
		ListedCount    int64 `json:"listed_count,omitempty"`
	} `json:"public_metrics,omitempty"`
	URL       *string    `json:"url,omitempty"`
	Verified  *bool      `json:"verified,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type UserByUsernameResponse struct {
	Data *User `json:"data,omitempty"`
}

// GetUserByUsername resolves a handle to a user record. A response without
// data means the handle does not exist; the caller decides how to report
// that.
func (c *Client) GetUserByUsername(ctx context.Context, username string) (*User, *RateLimit, error) {
	params := make(map[string]string)
	setRequestParam(params, "user.fields", UserFields)

	var r UserByUsernameResponse
	rate, err := c.Get(ctx, "users/by/username/"+url.PathEscape(username), params, &r)
	if err != nil {
		return nil, rate, err
	}

	return r.Data, rate, nil
}
