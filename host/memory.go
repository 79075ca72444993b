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
	"sync"
)

// Memory is an in-process Runtime keeping everything in maps. It backs
// tests and dry runs where no platform is reachable.
type Memory struct {
	mu sync.Mutex

	logs      map[TaskRef][]LogEntry
	statuses  map[TaskRef]Status
	uploads   map[TaskRef]map[string][]byte
	questions map[TaskRef][]string
	responses map[TaskRef]string
}

type LogEntry struct {
	Severity Severity
	Body     string
}

func NewMemory() *Memory {
	return &Memory{
		logs:      make(map[TaskRef][]LogEntry),
		statuses:  make(map[TaskRef]Status),
		uploads:   make(map[TaskRef]map[string][]byte),
		questions: make(map[TaskRef][]string),
		responses: make(map[TaskRef]string),
	}
}

func (m *Memory) AddTaskLog(_ context.Context, ref TaskRef, severity Severity, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[ref] = append(m.logs[ref], LogEntry{Severity: severity, Body: body})
	return nil
}

func (m *Memory) SetTaskStatus(_ context.Context, ref TaskRef, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[ref] = status
	return nil
}

func (m *Memory) UploadFile(_ context.Context, ref TaskRef, path string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	files := m.uploads[ref]
	if files == nil {
		files = make(map[string][]byte)
		m.uploads[ref] = files
	}
	files[path] = append([]byte(nil), content...)
	return nil
}

func (m *Memory) RequestHumanAssistance(_ context.Context, ref TaskRef, question string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[ref] = append(m.questions[ref], question)
	return nil
}

func (m *Memory) LastHumanResponse(_ context.Context, ref TaskRef) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp, ok := m.responses[ref]
	return resp, ok, nil
}

// SetHumanResponse seeds an answer, standing in for a human replying on
// the platform.
func (m *Memory) SetHumanResponse(ref TaskRef, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[ref] = response
}

func (m *Memory) Logs(ref TaskRef) []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogEntry(nil), m.logs[ref]...)
}

func (m *Memory) TaskStatus(ref TaskRef) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statuses[ref]
}

func (m *Memory) Uploaded(ref TaskRef, path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.uploads[ref][path]
	return content, ok
}

func (m *Memory) Questions(ref TaskRef) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.questions[ref]...)
}
