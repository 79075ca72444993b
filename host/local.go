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

package host

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/db"
)

// Local is the platform-less Runtime for standalone invocations: task
// logs and assistance requests land in the bbolt journal, uploads in a
// workspace directory on disk.
type Local struct {
	journal *db.Client
	dir     string
	logger  *zap.SugaredLogger
}

func NewLocal(journal *db.Client, workspaceDir string, logger *zap.SugaredLogger) *Local {
	return &Local{
		journal: journal,
		dir:     workspaceDir,
		logger:  logger,
	}
}

func (l *Local) AddTaskLog(_ context.Context, ref TaskRef, severity Severity, body string) error {
	switch severity {
	case SeverityWarning:
		l.logger.Warnw(body, "workspace", ref.WorkspaceID, "task", ref.TaskID)
	case SeverityError:
		l.logger.Errorw(body, "workspace", ref.WorkspaceID, "task", ref.TaskID)
	default:
		l.logger.Infow(body, "workspace", ref.WorkspaceID, "task", ref.TaskID)
	}
	return l.journal.AppendTaskLog(db.TaskLogRecord{
		WorkspaceID: ref.WorkspaceID,
		TaskID:      ref.TaskID,
		Severity:    string(severity),
		Body:        body,
		LoggedAt:    time.Now(),
	})
}

func (l *Local) SetTaskStatus(_ context.Context, ref TaskRef, status Status) error {
	l.logger.Infow("task status", "workspace", ref.WorkspaceID, "task", ref.TaskID, "status", status)
	return nil
}

func (l *Local) UploadFile(_ context.Context, ref TaskRef, path string, content []byte) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	full := filepath.Join(l.dir, filepath.Base(path))
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return err
	}
	return l.journal.AppendArtifact(db.ArtifactRecord{
		WorkspaceID: ref.WorkspaceID,
		TaskID:      ref.TaskID,
		Name:        filepath.Base(path),
		Size:        len(content),
		StoredAt:    time.Now(),
	})
}

func (l *Local) RequestHumanAssistance(_ context.Context, ref TaskRef, question string) error {
	l.logger.Warnw("human assistance required", "workspace", ref.WorkspaceID, "task", ref.TaskID, "question", question)
	return l.journal.RegisterAssistance(db.AssistanceRecord{
		WorkspaceID: ref.WorkspaceID,
		TaskID:      ref.TaskID,
		Question:    question,
		AskedAt:     time.Now(),
	})
}

func (l *Local) LastHumanResponse(_ context.Context, ref TaskRef) (string, bool, error) {
	record, err := l.journal.GetAssistance(ref.WorkspaceID, ref.TaskID)
	if err != nil {
		return "", false, err
	}
	if record == nil || !record.Answered {
		return "", false, nil
	}
	return record.Response, true, nil
}
