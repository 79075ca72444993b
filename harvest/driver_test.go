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
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/host"
	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/storage"
	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/twitter"
)

// fakeAPI serves a fixed page sequence and records every request.
type fakeAPI struct {
	pages      []*twitter.UserTweetsResponse
	users      map[string]*twitter.User
	requests   []twitter.UserTweetsRequest
	fetchTimes []time.Time
	err        error
	lookupErr  error
}

func (f *fakeAPI) GetUserTweets(_ context.Context, req twitter.UserTweetsRequest) (*twitter.UserTweetsResponse, *twitter.RateLimit, error) {
	f.requests = append(f.requests, req)
	f.fetchTimes = append(f.fetchTimes, time.Now())
	if f.err != nil {
		return nil, nil, f.err
	}
	i := len(f.requests) - 1
	if i >= len(f.pages) {
		return &twitter.UserTweetsResponse{}, nil, nil
	}
	return f.pages[i], nil, nil
}

func (f *fakeAPI) GetUserByUsername(_ context.Context, username string) (*twitter.User, *twitter.RateLimit, error) {
	if f.lookupErr != nil {
		return nil, nil, f.lookupErr
	}
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.users[username], nil, nil
}

const secondPage = `{
  "data": [
    {"id": "500", "text": "older", "author_id": "u1", "conversation_id": "500", "created_at": "2024-12-01T00:00:00Z"}
  ],
  "meta": {"result_count": 1}
}`

func TestRunMultiPage(t *testing.T) {
	api := &fakeAPI{pages: []*twitter.UserTweetsResponse{
		parsePage(t, threadedPage),
		parsePage(t, secondPage),
	}}
	runtime := host.NewMemory()
	ref := host.TaskRef{WorkspaceID: 1, TaskID: 2}
	runner := NewRunner(api, runtime, zap.NewNop().Sugar())

	in := RunInput{UserID: "42"}
	result, err := runner.Run(context.Background(), ref, in, storage.NewUpload(runtime, ref))
	if err != nil {
		t.Fatal(err)
	}

	// 3 primary + 1 referenced on the first page, 1 on the second.
	if result.TotalTweets != 5 {
		t.Errorf("total tweets, actual: %d, expected: 5", result.TotalTweets)
	}
	if result.Iterations != 2 {
		t.Errorf("iterations, actual: %d, expected: 2", result.Iterations)
	}
	if len(api.requests) != 2 {
		t.Fatalf("fetches, actual: %d, expected: 2", len(api.requests))
	}
	if api.requests[1].Params["pagination_token"] != "t2" {
		t.Errorf("second fetch cursor, actual: %s, expected: t2", api.requests[1].Params["pagination_token"])
	}

	expectedArtifacts := []string{
		"twitter-conversations-user-42-batch-null.json",
		"twitter-conversations-user-42-batch-t2.json",
	}
	if len(result.Artifacts) != 2 || result.Artifacts[0] != expectedArtifacts[0] || result.Artifacts[1] != expectedArtifacts[1] {
		t.Errorf("artifacts, actual: %v, expected: %v", result.Artifacts, expectedArtifacts)
	}
	for _, name := range expectedArtifacts {
		if _, ok := runtime.Uploaded(ref, name); !ok {
			t.Errorf("artifact %s not uploaded", name)
		}
	}

	if runtime.TaskStatus(ref) != host.StatusDone {
		t.Errorf("status, actual: %s, expected: %s", runtime.TaskStatus(ref), host.StatusDone)
	}
	expectedSummary := "Successfully retrieved and processed 5 tweets (in 2 iterations) for Twitter user ID 42 and stored them as JSON files:"
	if !strings.HasPrefix(result.Summary, expectedSummary) {
		t.Errorf("summary, actual: %s", result.Summary)
	}
}

func TestRunPacesPageFetches(t *testing.T) {
	api := &fakeAPI{pages: []*twitter.UserTweetsResponse{
		parsePage(t, threadedPage),
		parsePage(t, secondPage),
	}}
	runtime := host.NewMemory()
	ref := host.TaskRef{WorkspaceID: 1, TaskID: 2}
	runner := NewRunner(api, runtime, zap.NewNop().Sugar())

	start := time.Now()
	if _, err := runner.Run(context.Background(), ref, RunInput{UserID: "42"}, storage.NewUpload(runtime, ref)); err != nil {
		t.Fatal(err)
	}

	if len(api.fetchTimes) != 2 {
		t.Fatalf("fetches, actual: %d, expected: 2", len(api.fetchTimes))
	}
	// The second page may not start before one full delay has elapsed.
	if gap := api.fetchTimes[1].Sub(start); gap < pageDelay {
		t.Errorf("second fetch started after %v, expected at least %v", gap, pageDelay)
	}
}

func TestRunNoTweets(t *testing.T) {
	api := &fakeAPI{pages: []*twitter.UserTweetsResponse{{}}}
	runtime := host.NewMemory()
	ref := host.TaskRef{WorkspaceID: 1, TaskID: 2}
	runner := NewRunner(api, runtime, zap.NewNop().Sugar())

	result, err := runner.Run(context.Background(), ref, RunInput{UserID: "42"}, storage.NewUpload(runtime, ref))
	if err != nil {
		t.Fatal(err)
	}

	expected := "No tweets found for Twitter user ID 42."
	if result.Summary != expected {
		t.Errorf("summary, actual: %s, expected: %s", result.Summary, expected)
	}
	if runtime.TaskStatus(ref) != host.StatusDone {
		t.Errorf("status, actual: %s, expected: %s", runtime.TaskStatus(ref), host.StatusDone)
	}
}

func TestRunFetchError(t *testing.T) {
	api := &fakeAPI{err: errors.New("connection reset")}
	runtime := host.NewMemory()
	ref := host.TaskRef{WorkspaceID: 1, TaskID: 2}
	runner := NewRunner(api, runtime, zap.NewNop().Sugar())

	result, err := runner.Run(context.Background(), ref, RunInput{UserID: "42"}, storage.NewUpload(runtime, ref))
	if err == nil {
		t.Fatal("expected error")
	}

	var integrationErr *IntegrationError
	if !errors.As(err, &integrationErr) {
		t.Errorf("error type, actual: %T", err)
	}
	if !strings.HasPrefix(result.Summary, "Tweets could not be retrieved for Twitter user ID 42.") {
		t.Errorf("summary, actual: %s", result.Summary)
	}
	if runtime.TaskStatus(ref) != host.StatusError {
		t.Errorf("status, actual: %s, expected: %s", runtime.TaskStatus(ref), host.StatusError)
	}

	var errorLogged bool
	for _, entry := range runtime.Logs(ref) {
		if entry.Severity == host.SeverityError {
			errorLogged = true
		}
	}
	if !errorLogged {
		t.Error("the failure should reach the task log at error severity")
	}
}

func TestRunResolvesUsername(t *testing.T) {
	api := &fakeAPI{
		pages: []*twitter.UserTweetsResponse{{}},
		users: map[string]*twitter.User{"alice": {ID: "42", Username: "alice"}},
	}
	runtime := host.NewMemory()
	ref := host.TaskRef{WorkspaceID: 1, TaskID: 2}
	runner := NewRunner(api, runtime, zap.NewNop().Sugar())

	result, err := runner.Run(context.Background(), ref, RunInput{Username: "alice"}, storage.NewUpload(runtime, ref))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Summary, "42") {
		t.Errorf("summary should name the resolved id, actual: %s", result.Summary)
	}

	var lookupLogged bool
	for _, entry := range runtime.Logs(ref) {
		if strings.Contains(entry.Body, "alice user id is: 42") {
			lookupLogged = true
		}
	}
	if !lookupLogged {
		t.Error("the resolved user id should reach the task log")
	}
}

func TestRunUnknownUsername(t *testing.T) {
	// The v2 user lookup reports an unknown handle as HTTP 200 with an
	// errors array and no data.
	api := &fakeAPI{lookupErr: &twitter.APIError{
		Errors: twitter.Errors{{
			Title:  "Not Found Error",
			Detail: "Could not find user with username: [nobody].",
			Type:   "https://api.twitter.com/2/problems/resource-not-found",
		}},
		StatusCode: 200,
		Status:     "200 OK",
	}}
	runtime := host.NewMemory()
	ref := host.TaskRef{WorkspaceID: 1, TaskID: 2}
	runner := NewRunner(api, runtime, zap.NewNop().Sugar())

	_, err := runner.Run(context.Background(), ref, RunInput{Username: "nobody"}, storage.NewUpload(runtime, ref))

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error type, actual: %T", err)
	}
	if notFound.Error() != "nobody user id not found" {
		t.Errorf("message, actual: %s", notFound.Error())
	}
}

func TestRunUsernameLookupFailure(t *testing.T) {
	// An actual HTTP failure on the lookup stays an integration error.
	api := &fakeAPI{lookupErr: &twitter.APIError{
		Errors: twitter.Errors{{
			Title: "Unauthorized",
		}},
		StatusCode: 401,
		Status:     "401 Unauthorized",
	}}
	runtime := host.NewMemory()
	ref := host.TaskRef{WorkspaceID: 1, TaskID: 2}
	runner := NewRunner(api, runtime, zap.NewNop().Sugar())

	_, err := runner.Run(context.Background(), ref, RunInput{Username: "nobody"}, storage.NewUpload(runtime, ref))

	var integrationErr *IntegrationError
	if !errors.As(err, &integrationErr) {
		t.Fatalf("error type, actual: %T", err)
	}
	if integrationErr.StatusCode != 401 {
		t.Errorf("status code, actual: %d, expected: 401", integrationErr.StatusCode)
	}
}

func TestRunRequestsHumanAssistance(t *testing.T) {
	api := &fakeAPI{}
	runtime := host.NewMemory()
	ref := host.TaskRef{WorkspaceID: 1, TaskID: 2}
	runner := NewRunner(api, runtime, zap.NewNop().Sugar())

	result, err := runner.Run(context.Background(), ref, RunInput{}, storage.NewUpload(runtime, ref))
	if err != nil {
		t.Fatal(err)
	}

	expectedSummary := "Human assistance requested: " + assistancePrompt
	if result.Summary != expectedSummary {
		t.Errorf("summary, actual: %s, expected: %s", result.Summary, expectedSummary)
	}
	if runtime.TaskStatus(ref) != host.StatusHumanAssistance {
		t.Errorf("status, actual: %s, expected: %s", runtime.TaskStatus(ref), host.StatusHumanAssistance)
	}
	questions := runtime.Questions(ref)
	if len(questions) != 1 || questions[0] != assistancePrompt {
		t.Errorf("questions, actual: %v", questions)
	}
	if len(api.requests) != 0 {
		t.Error("no fetch should happen without a subject")
	}
}

func TestRunInvalidInput(t *testing.T) {
	api := &fakeAPI{}
	runtime := host.NewMemory()
	ref := host.TaskRef{WorkspaceID: 1, TaskID: 2}
	runner := NewRunner(api, runtime, zap.NewNop().Sugar())

	_, err := runner.Run(context.Background(), ref, RunInput{UserID: "42", MaxResults: 3}, storage.NewUpload(runtime, ref))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if runtime.TaskStatus(ref) != host.StatusError {
		t.Errorf("status, actual: %s, expected: %s", runtime.TaskStatus(ref), host.StatusError)
	}
}
