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

// Package harvest ingests a user's timeline page by page, rebuilds the
// flat tweet stream into threaded conversations and delivers each batch
// to a webhook or to file storage, surviving partial delivery failures.
package harvest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/host"
	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/metrics"
	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/storage"
	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/twitter"
)

// pageDelay spaces consecutive timeline fetches. Fixed operational
// policy, not a tunable.
const pageDelay = 500 * time.Millisecond

type runState int

const (
	stateResolving runState = iota
	stateFetching
	stateProcessing
	stateAdvancing
	stateDone
	stateFailed
)

// RunResult is the terminal summary of one run. Counters reflect
// attempts, not confirmed successes.
type RunResult struct {
	Summary          string
	TotalTweets      int
	Iterations       int
	DeliveryAttempts int
	DeliveryFailures int
	Artifacts        []string
}

// Runner drives the fetch/reconstruct/deliver cycle across cursor-based
// pages. One Runner may serve many runs; all per-run state is local to
// Run.
type Runner struct {
	api     Integration
	runtime host.Runtime
	logger  *zap.SugaredLogger
}

func NewRunner(api Integration, runtime host.Runtime, logger *zap.SugaredLogger) *Runner {
	return &Runner{
		api:     api,
		runtime: runtime,
		logger:  logger,
	}
}

// Run executes one harvesting run to completion. Pages are processed
// strictly sequentially: the next cursor is only known once the current
// page is parsed, and sequential webhook attempts keep batch order.
// Fatal errors (resolution, fetch) mark the task errored and return a
// failure summary; delivery and storage failures are absorbed along the
// way.
func (r *Runner) Run(ctx context.Context, ref host.TaskRef, in RunInput, store storage.ArtifactStore) (RunResult, error) {
	metrics.RunsTotal.Inc()

	if err := in.Validate(); err != nil {
		return r.fail(ctx, ref, in.Subject(), err)
	}

	if err := r.runtime.SetTaskStatus(ctx, ref, host.StatusInProgress); err != nil {
		r.logger.Warnw("set task status failed", "error", err)
	}

	var (
		result     RunResult
		userID     string
		page       *twitter.UserTweetsResponse
		dispatcher *Dispatcher
	)

	fetcher := NewFetcher(r.api)
	resolver := NewResolver(r.api, r.runtime, r.logger)
	// The bucket starts full; spend the stored token so the first page
	// boundary waits like every later one.
	limiter := rate.NewLimiter(rate.Every(pageDelay), 1)
	limiter.Allow()
	cursor := in.PaginationToken
	degraded := false

	state := stateResolving
	for state != stateDone && state != stateFailed {
		switch state {
		case stateResolving:
			id, err := resolver.Resolve(ctx, ref, in.UserID, in.Username)
			if err != nil {
				return r.fail(ctx, ref, in.Subject(), err)
			}
			if id == "" {
				// Human assistance was requested; the task stays parked
				// until a follow-up run arrives with an answer.
				result.Summary = "Human assistance requested: " + assistancePrompt
				return result, nil
			}
			userID = id
			dispatcher = NewDispatcher(r.runtime, r.logger, Target{
				WebhookURL:  in.WebhookURL,
				WebhookAuth: in.WebhookAuth,
				Store:       store,
			}, userID)
			state = stateFetching

		case stateFetching:
			r.taskLog(ctx, ref, fmt.Sprintf(
				"Retrieving the %d latest tweets for Twitter user ID %s (pagination token: %s)",
				in.MaxResults, userID, cursorOrNone(cursor)))

			var err error
			page, err = fetcher.FetchPage(ctx, userID, in.queryParams(cursor))
			if err != nil {
				return r.fail(ctx, ref, userID, err)
			}
			metrics.PagesFetched.Inc()
			if len(page.Data) == 0 {
				r.logger.Debugw("no tweets on page", "user", userID, "cursor", cursor)
				state = stateDone
				break
			}
			state = stateProcessing

		case stateProcessing:
			conversations := Reconstruct(page)
			result.Iterations++
			pageTweets := 0
			for _, c := range conversations {
				pageTweets += len(c.Tweets)
			}
			result.TotalTweets += pageTweets
			metrics.TweetsProcessed.Add(float64(pageTweets))

			report := dispatcher.Deliver(ctx, ref, conversations, cursor)
			result.DeliveryAttempts += report.Attempts
			result.DeliveryFailures += report.Failures
			metrics.DeliveryAttempts.Add(float64(report.Attempts))
			metrics.DeliveryFailures.Add(float64(report.Failures))
			if report.Artifact != "" {
				result.Artifacts = append(result.Artifacts, report.Artifact)
				metrics.ArtifactsStored.Inc()
			}
			if report.StorageErr != nil {
				degraded = true
				r.logger.Warnw("batch storage failed", "error", report.StorageErr)
			}
			state = stateAdvancing

		case stateAdvancing:
			next := page.NextToken()
			if next == "" {
				state = stateDone
				break
			}
			cursor = next
			if err := limiter.Wait(ctx); err != nil {
				return r.fail(ctx, ref, userID, asIntegrationError(err))
			}
			state = stateFetching
		}
	}

	result.Summary = r.summarize(in, userID, result, degraded)
	if err := r.runtime.SetTaskStatus(ctx, ref, host.StatusDone); err != nil {
		r.logger.Warnw("set task status failed", "error", err)
	}
	return result, nil
}

func (r *Runner) summarize(in RunInput, userID string, result RunResult, degraded bool) string {
	if result.TotalTweets == 0 {
		return fmt.Sprintf("No tweets found for Twitter user ID %s.", userID)
	}

	if in.WebhookURL != "" {
		return fmt.Sprintf(
			"Successfully retrieved and processed %d tweets (in %d iterations) for Twitter user ID %s and sent them to the external webhook in %d POST requests.",
			result.TotalTweets, result.Iterations, userID, result.DeliveryAttempts)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb,
		"Successfully retrieved and processed %d tweets (in %d iterations) for Twitter user ID %s and stored them as JSON files:",
		result.TotalTweets, result.Iterations, userID)
	for _, name := range result.Artifacts {
		sb.WriteString("\n- ")
		sb.WriteString(name)
	}
	if degraded {
		sb.WriteString("\nSome batches could not be stored; see the task log.")
	}
	return sb.String()
}

func (r *Runner) fail(ctx context.Context, ref host.TaskRef, subject string, cause error) (RunResult, error) {
	metrics.RunFailures.Inc()
	r.logger.Errorw("run failed", "subject", subject, "error", cause)

	if err := r.runtime.AddTaskLog(ctx, ref, host.SeverityError, cause.Error()); err != nil {
		r.logger.Warnw("task log failed", "error", err)
	}
	if err := r.runtime.SetTaskStatus(ctx, ref, host.StatusError); err != nil {
		r.logger.Warnw("set task status failed", "error", err)
	}

	summary := fmt.Sprintf("Tweets could not be retrieved for Twitter user ID %s.\nErrors: %s", subject, cause.Error())
	return RunResult{Summary: summary}, cause
}

func (r *Runner) taskLog(ctx context.Context, ref host.TaskRef, body string) {
	if err := r.runtime.AddTaskLog(ctx, ref, host.SeverityInfo, body); err != nil {
		r.logger.Warnw("task log failed", "error", err)
	}
}

func cursorOrNone(cursor string) string {
	if cursor == "" {
		return "none"
	}
	return cursor
}
