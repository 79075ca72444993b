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
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/host"
	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/storage"
	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/webhook"
)

// Target selects the run's delivery mode: a webhook descriptor or an
// artifact store, never both.
type Target struct {
	WebhookURL  string
	WebhookAuth *webhook.Auth
	Store       storage.ArtifactStore
}

func (t Target) webhookMode() bool {
	return t.WebhookURL != ""
}

// Outcome is one conversation's delivery attempt.
type Outcome struct {
	ConversationID string
	Err            error
}

// DeliveryReport aggregates one page batch. Attempts counts every
// webhook POST regardless of outcome; StorageErr carries a failed file
// write, recovered by the caller as degraded success.
type DeliveryReport struct {
	Attempts   int
	Failures   int
	Artifact   string
	Outcomes   []Outcome
	StorageErr error
}

// Dispatcher delivers reconstructed conversation batches. Per-item
// webhook failures are captured as outcome values and never abort the
// rest of the batch.
type Dispatcher struct {
	runtime host.Runtime
	logger  *zap.SugaredLogger
	target  Target
	client  *webhook.Client
	userID  string
}

func NewDispatcher(runtime host.Runtime, logger *zap.SugaredLogger, target Target, userID string) *Dispatcher {
	d := &Dispatcher{
		runtime: runtime,
		logger:  logger,
		target:  target,
		userID:  userID,
	}
	if target.webhookMode() {
		d.client = webhook.NewClient(target.WebhookAuth)
	}
	return d
}

func (d *Dispatcher) Deliver(ctx context.Context, ref host.TaskRef, conversations []Conversation, cursor string) DeliveryReport {
	if d.target.webhookMode() {
		return d.deliverWebhook(ctx, ref, conversations)
	}
	return d.deliverFile(ctx, ref, conversations, cursor)
}

func (d *Dispatcher) deliverWebhook(ctx context.Context, ref host.TaskRef, conversations []Conversation) DeliveryReport {
	var report DeliveryReport

	d.taskLog(ctx, ref, host.SeverityInfo, "POSTing each conversation to the webhook")

	for _, conversation := range conversations {
		report.Attempts++
		d.logger.Debugw("posting conversation",
			"conversation", conversation.ConversationID,
			"preview", Preview(conversation, 80))

		err := d.client.Post(ctx, d.target.WebhookURL, conversation)
		report.Outcomes = append(report.Outcomes, Outcome{
			ConversationID: conversation.ConversationID,
			Err:            err,
		})
		if err != nil {
			report.Failures++
			d.taskLog(ctx, ref, host.SeverityWarning,
				fmt.Sprintf("POST request error: %v - ignored, continuing with remaining conversations", err))
		}
	}

	return report
}

func (d *Dispatcher) deliverFile(ctx context.Context, ref host.TaskRef, conversations []Conversation, cursor string) DeliveryReport {
	var report DeliveryReport

	name := ArtifactName(d.userID, cursor)
	d.taskLog(ctx, ref, host.SeverityInfo, "Storing conversation batch inside "+name)

	content, err := json.MarshalIndent(conversations, "", "  ")
	if err != nil {
		report.StorageErr = &StorageError{Name: name, cause: err}
		return report
	}

	if err := d.target.Store.Put(ctx, name, content); err != nil {
		report.StorageErr = &StorageError{Name: name, cause: err}
		d.taskLog(ctx, ref, host.SeverityWarning,
			fmt.Sprintf("storing %s failed: %v - batch lost, run continues", name, err))
		return report
	}

	report.Artifact = name
	return report
}

func (d *Dispatcher) taskLog(ctx context.Context, ref host.TaskRef, severity host.Severity, body string) {
	if err := d.runtime.AddTaskLog(ctx, ref, severity, body); err != nil {
		d.logger.Warnw("task log failed", "error", err)
	}
}

// ArtifactName derives the deterministic batch file name from the
// subject user and the page cursor. The cursorless first page uses a
// literal "null" marker; reruns over the same cursor sequence therefore
// produce the same names and overwrite instead of piling up.
func ArtifactName(userID, cursor string) string {
	if cursor == "" {
		cursor = "null"
	}
	return fmt.Sprintf("twitter-conversations-user-%s-batch-%s.json", userID, cursor)
}
