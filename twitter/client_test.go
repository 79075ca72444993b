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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGetUserTweets(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		if auth := r.Header.Get("Authorization"); auth != "Bearer token" {
			t.Errorf("authorization, actual: %s, expected: Bearer token", auth)
		}
		w.Header().Set("X-Rate-Limit-Limit", "900")
		w.Header().Set("X-Rate-Limit-Remaining", "899")
		w.Header().Set("X-Rate-Limit-Reset", "1735689600")
		w.Write([]byte(`{
			"data": [{"id": "1", "text": "hi", "author_id": "42", "conversation_id": "1", "created_at": "2025-01-01T00:00:00Z"}],
			"meta": {"result_count": 1, "next_token": "t2"}
		}`))
	}))
	defer srv.Close()

	c := NewClient("token")
	c.SetBaseURL(srv.URL)

	resp, rate, err := c.GetUserTweets(context.Background(), UserTweetsRequest{
		UserID: "42",
		Params: map[string]string{"max_results": "100"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if gotPath != "/users/42/tweets" {
		t.Errorf("path, actual: %s, expected: /users/42/tweets", gotPath)
	}
	if gotQuery["max_results"][0] != "100" {
		t.Errorf("max_results, actual: %v", gotQuery["max_results"])
	}
	// Field supersets ride along as comma-joined lists.
	if fields := gotQuery["tweet.fields"]; len(fields) != 1 || !strings.Contains(fields[0], "conversation_id,created_at") {
		t.Errorf("tweet.fields, actual: %v", fields)
	}
	if exp := gotQuery["expansions"]; len(exp) != 1 || !strings.Contains(exp[0], "referenced_tweets.id.author_id") {
		t.Errorf("expansions, actual: %v", exp)
	}

	if len(resp.Data) != 1 || resp.Data[0].ID != "1" {
		t.Errorf("data, actual: %+v", resp.Data)
	}
	if resp.NextToken() != "t2" {
		t.Errorf("next token, actual: %s, expected: t2", resp.NextToken())
	}
	if rate.Limit != 900 || rate.Remaining != 899 {
		t.Errorf("rate limit, actual: %+v", rate)
	}
}

func TestGetUserTweetsRequiresUserID(t *testing.T) {
	c := NewClient("token")
	if _, _, err := c.GetUserTweets(context.Background(), UserTweetsRequest{}); err == nil {
		t.Error("expected error for missing user id")
	}
}

func TestGetUserTweetsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"errors": [{"title": "Too Many Requests", "detail": "Rate limit exceeded", "type": "about:blank"}]}`))
	}))
	defer srv.Close()

	c := NewClient("token")
	c.SetBaseURL(srv.URL)

	_, _, err := c.GetUserTweets(context.Background(), UserTweetsRequest{UserID: "42"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type, actual: %T", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status code, actual: %d, expected: 429", apiErr.StatusCode)
	}
	if apiErr.Detail() != "Rate limit exceeded" {
		t.Errorf("detail, actual: %s, expected: Rate limit exceeded", apiErr.Detail())
	}
}

func TestGetUserByUsername(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/by/username/alice" {
			t.Errorf("path, actual: %s", r.URL.Path)
		}
		w.Write([]byte(`{"data": {"id": "42", "name": "Alice", "username": "alice"}}`))
	}))
	defer srv.Close()

	c := NewClient("token")
	c.SetBaseURL(srv.URL)

	user, _, err := c.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if user == nil || user.ID != "42" {
		t.Errorf("user, actual: %+v", user)
	}
}

func TestGetUserByUsernameNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The v2 API reports unknown handles with 200, an errors array and
		// no data.
		w.Write([]byte(`{"errors": [{
			"title": "Not Found Error",
			"detail": "Could not find user with username: [nobody].",
			"type": "https://api.twitter.com/2/problems/resource-not-found"
		}]}`))
	}))
	defer srv.Close()

	c := NewClient("token")
	c.SetBaseURL(srv.URL)

	user, _, err := c.GetUserByUsername(context.Background(), "nobody")
	if user != nil {
		t.Errorf("user, actual: %+v, expected: nil", user)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type, actual: %T", err)
	}
	if apiErr.StatusCode != http.StatusOK {
		t.Errorf("status code, actual: %d, expected: 200", apiErr.StatusCode)
	}
	if apiErr.Detail() != "Could not find user with username: [nobody]." {
		t.Errorf("detail, actual: %s", apiErr.Detail())
	}
}

func TestGetUserByUsernameEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("token")
	c.SetBaseURL(srv.URL)

	user, _, err := c.GetUserByUsername(context.Background(), "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if user != nil {
		t.Errorf("user, actual: %+v, expected: nil", user)
	}
}

func TestSetRequestParam(t *testing.T) {
	m := map[string]string{}
	setRequestParam(m, "fields", []string{"a", "b", "c"})
	if m["fields"] != "a,b,c" {
		t.Errorf("fields, actual: %s, expected: a,b,c", m["fields"])
	}
	setRequestParam(m, "empty", nil)
	if _, ok := m["empty"]; ok {
		t.Error("empty value list should not set a parameter")
	}
}
