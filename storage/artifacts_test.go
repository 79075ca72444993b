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

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/host"
)

func TestValidName(t *testing.T) {
	valid := []string{"batch.json", "twitter-conversations-user-42-batch-null.json"}
	for _, name := range valid {
		if !ValidName(name) {
			t.Errorf("ValidName(%q), actual: false, expected: true", name)
		}
	}
	invalid := []string{"", ".", "..", "a/b.json", `a\b.json`, "../escape.json"}
	for _, name := range invalid {
		if ValidName(name) {
			t.Errorf("ValidName(%q), actual: true, expected: false", name)
		}
	}
}

func TestLocalPut(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)

	if err := s.Put(context.Background(), "batch.json", []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(filepath.Join(dir, "batch.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != `[]` {
		t.Errorf("content, actual: %s, expected: []", content)
	}

	// Same name overwrites.
	if err := s.Put(context.Background(), "batch.json", []byte(`[1]`)); err != nil {
		t.Fatal(err)
	}
	content, _ = os.ReadFile(filepath.Join(dir, "batch.json"))
	if string(content) != `[1]` {
		t.Errorf("overwrite, actual: %s, expected: [1]", content)
	}

	if err := s.Put(context.Background(), "../escape.json", nil); err == nil {
		t.Error("expected invalid name error")
	}
}

func TestUploadPut(t *testing.T) {
	runtime := host.NewMemory()
	ref := host.TaskRef{WorkspaceID: 7, TaskID: 9}
	s := NewUpload(runtime, ref)

	if err := s.Put(context.Background(), "batch.json", []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	content, ok := runtime.Uploaded(ref, "batch.json")
	if !ok || string(content) != `[]` {
		t.Errorf("uploaded, actual: %s, present: %v", content, ok)
	}
}
