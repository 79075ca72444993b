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
	"fmt"

	"go.uber.org/zap"

	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/host"
	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/twitter"
)

const assistancePrompt = "Please provide a valid Twitter username or user id."

// Resolver maps the invocation's subject to a stable numeric user id.
type Resolver struct {
	api     Integration
	runtime host.Runtime
	logger  *zap.SugaredLogger
}

func NewResolver(api Integration, runtime host.Runtime, logger *zap.SugaredLogger) *Resolver {
	return &Resolver{
		api:     api,
		runtime: runtime,
		logger:  logger,
	}
}

// Resolve prefers an explicit id unconditionally, then a handle lookup.
// With neither, it files a single human-assistance request and returns
// an empty id: the caller must treat that as "cannot proceed this run".
func (r *Resolver) Resolve(ctx context.Context, ref host.TaskRef, userID, username string) (string, error) {
	if userID != "" {
		return userID, nil
	}

	if username != "" {
		return r.resolveByUsername(ctx, ref, username)
	}

	if err := r.runtime.RequestHumanAssistance(ctx, ref, assistancePrompt); err != nil {
		return "", fmt.Errorf("request human assistance: %w", err)
	}
	if err := r.runtime.SetTaskStatus(ctx, ref, host.StatusHumanAssistance); err != nil {
		r.logger.Warnw("set task status failed", "error", err)
	}
	return "", nil
}

func (r *Resolver) resolveByUsername(ctx context.Context, ref host.TaskRef, username string) (string, error) {
	if err := r.runtime.AddTaskLog(ctx, ref, host.SeverityInfo, "Twitter user lookup by username: "+username); err != nil {
		r.logger.Warnw("task log failed", "error", err)
	}

	user, _, err := r.api.GetUserByUsername(ctx, username)
	if err != nil {
		// The v2 lookup reports an unknown handle as HTTP 200 with an
		// errors array and no data, not as an HTTP failure.
		var apiErr *twitter.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode/100 == 2 {
			return "", &NotFoundError{Username: username}
		}
		return "", asIntegrationError(err)
	}
	if user == nil || user.ID == "" {
		return "", &NotFoundError{Username: username}
	}

	if err := r.runtime.AddTaskLog(ctx, ref, host.SeverityInfo, fmt.Sprintf("%s user id is: %s", username, user.ID)); err != nil {
		r.logger.Warnw("task log failed", "error", err)
	}
	return user.ID, nil
}
