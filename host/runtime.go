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

// Package host abstracts the agent platform a run executes under: task
// logging, task status, workspace file upload and the human-assistance
// channel. The harvesting pipeline only ever sees the Runtime interface.
package host

import (
	"context"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Status string

const (
	StatusToDo            Status = "to-do"
	StatusInProgress      Status = "in-progress"
	StatusDone            Status = "done"
	StatusError           Status = "error"
	StatusHumanAssistance Status = "human-assistance-required"
	StatusCancelled       Status = "cancelled"
)

// TaskRef identifies the task a run executes on behalf of.
type TaskRef struct {
	WorkspaceID int64 `json:"workspaceId"`
	TaskID      int64 `json:"taskId"`
}

type Runtime interface {
	AddTaskLog(ctx context.Context, ref TaskRef, severity Severity, body string) error
	SetTaskStatus(ctx context.Context, ref TaskRef, status Status) error
	UploadFile(ctx context.Context, ref TaskRef, path string, content []byte) error

	// RequestHumanAssistance posts a single question to the workspace.
	// It does not wait for an answer; a later invocation reads it back
	// through LastHumanResponse.
	RequestHumanAssistance(ctx context.Context, ref TaskRef, question string) error
	LastHumanResponse(ctx context.Context, ref TaskRef) (string, bool, error)
}
