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
	"encoding/json"
	"sort"
	"time"

	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/twitter"
)

// AuthorSummary is the slice of an author record embedded into each
// delivered tweet.
type AuthorSummary struct {
	ID              string         `json:"id"`
	Username        string         `json:"username"`
	Name            string         `json:"name"`
	ProfileImageURL string         `json:"profile_image_url,omitempty"`
	Verified        bool           `json:"verified"`
	PublicMetrics   *AuthorMetrics `json:"public_metrics,omitempty"`
	CreatedAt       *time.Time     `json:"created_at,omitempty"`
}

type AuthorMetrics struct {
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	TweetCount     int64 `json:"tweet_count"`
	ListedCount    int64 `json:"listed_count"`
}

func summarizeAuthor(u twitter.User) *AuthorSummary {
	s := &AuthorSummary{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
	if u.ProfileImageURL != nil {
		s.ProfileImageURL = *u.ProfileImageURL
	}
	if u.Verified != nil {
		s.Verified = *u.Verified
	}
	if u.PublicMetrics != nil {
		s.PublicMetrics = &AuthorMetrics{
			FollowersCount: u.PublicMetrics.FollowersCount,
			FollowingCount: u.PublicMetrics.FollowingCount,
			TweetCount:     u.PublicMetrics.TweetCount,
			ListedCount:    u.PublicMetrics.ListedCount,
		}
	}
	return s
}

// EnrichedTweet is a tweet with its author summary attached, or a null
// author when the record is unavailable. It serializes as the original
// tweet object plus an "author" key; nothing else about the payload is
// touched.
type EnrichedTweet struct {
	Tweet  twitter.Tweet
	Author *AuthorSummary
}

func (e EnrichedTweet) MarshalJSON() ([]byte, error) {
	fields, err := e.Tweet.Fields()
	if err != nil {
		return nil, err
	}
	author, err := json.Marshal(e.Author)
	if err != nil {
		return nil, err
	}
	fields["author"] = author
	return json.Marshal(fields)
}

// Conversation is a thread of tweets sharing one conversation id,
// ordered chronologically. CreatedByUserID and CreatedAt always mirror
// the first tweet after sorting.
type Conversation struct {
	ConversationID  string          `json:"conversation_id"`
	CreatedByUserID string          `json:"created_by_user_id"`
	CreatedAt       time.Time       `json:"created_at"`
	Tweets          []EnrichedTweet `json:"tweets"`
}

// Reconstruct merges a page's primary and referenced tweets into
// threaded conversations. Pure and deterministic: identical input yields
// identical output, conversations in first-seen order.
func Reconstruct(page *twitter.UserTweetsResponse) []Conversation {
	if page == nil {
		return nil
	}

	// Author lookup; duplicate ids are last-write-wins rather than an
	// error.
	authors := make(map[string]*AuthorSummary)
	for _, u := range page.IncludedUsers() {
		authors[u.ID] = summarizeAuthor(u)
	}

	// Unified tweet set: primary first, then referenced, deduplicated by
	// id with insertion order preserved. Referenced tweets carry the
	// thread context (parent replies, quotes) the primary page lacks.
	var order []string
	byID := make(map[string]twitter.Tweet)
	for _, t := range page.Data {
		if _, seen := byID[t.ID]; seen {
			continue
		}
		byID[t.ID] = t
		order = append(order, t.ID)
	}
	for _, t := range page.IncludedTweets() {
		if _, seen := byID[t.ID]; seen {
			continue
		}
		byID[t.ID] = t
		order = append(order, t.ID)
	}

	var convOrder []string
	buckets := make(map[string]*Conversation)
	for _, id := range order {
		t := byID[id]
		key := t.ConversationID
		if key == "" {
			// Degraded payload; keep the tweet as its own thread.
			key = t.ID
		}
		c, ok := buckets[key]
		if !ok {
			// Provisional metadata from the first tweet observed; fixed
			// up after sorting since a reply may arrive before the root.
			c = &Conversation{
				ConversationID:  key,
				CreatedByUserID: t.AuthorID,
				CreatedAt:       t.CreatedAt,
			}
			buckets[key] = c
			convOrder = append(convOrder, key)
		}
		c.Tweets = append(c.Tweets, EnrichedTweet{
			Tweet:  t,
			Author: authors[t.AuthorID],
		})
	}

	out := make([]Conversation, 0, len(convOrder))
	for _, key := range convOrder {
		c := buckets[key]
		sort.SliceStable(c.Tweets, func(i, j int) bool {
			return c.Tweets[i].Tweet.CreatedAt.Before(c.Tweets[j].Tweet.CreatedAt)
		})
		c.CreatedByUserID = c.Tweets[0].Tweet.AuthorID
		c.CreatedAt = c.Tweets[0].Tweet.CreatedAt
		out = append(out, *c)
	}
	return out
}
