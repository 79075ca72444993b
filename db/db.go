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

// Package db is the journal behind the standalone runtime: task logs,
// human-assistance requests and produced artifact names, kept in a local
// bbolt file as JSON records.
package db

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	bucketTaskLog    = "task_log"
	bucketAssistance = "assistance"
	bucketArtifact   = "artifact"
)

type Client struct {
	db *bolt.DB
}

type TaskLogRecord struct {
	WorkspaceID int64     `json:"workspace_id"`
	TaskID      int64     `json:"task_id"`
	Severity    string    `json:"severity"`
	Body        string    `json:"body"`
	LoggedAt    time.Time `json:"logged_at"`
}

type AssistanceRecord struct {
	WorkspaceID int64     `json:"workspace_id"`
	TaskID      int64     `json:"task_id"`
	Question    string    `json:"question"`
	Response    string    `json:"response,omitempty"`
	Answered    bool      `json:"answered"`
	AskedAt     time.Time `json:"asked_at"`
}

type ArtifactRecord struct {
	WorkspaceID int64     `json:"workspace_id"`
	TaskID      int64     `json:"task_id"`
	Name        string    `json:"name"`
	Size        int       `json:"size"`
	StoredAt    time.Time `json:"stored_at"`
}

func Open(path string) (*Client, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketTaskLog, bucketAssistance, bucketArtifact} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		db: db,
	}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) AppendTaskLog(record TaskLogRecord) error {
	return c.append(bucketTaskLog, record)
}

func (c *Client) AppendArtifact(record ArtifactRecord) error {
	return c.append(bucketArtifact, record)
}

// RegisterAssistance stores a pending question keyed by task; a later
// answer overwrites the same key.
func (c *Client) RegisterAssistance(record AssistanceRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketAssistance))
		if b == nil {
			return errors.New("bucket not found: " + bucketAssistance)
		}
		return b.Put(taskKey(record.WorkspaceID, record.TaskID), data)
	})
}

func (c *Client) GetAssistance(workspaceID, taskID int64) (*AssistanceRecord, error) {
	var record *AssistanceRecord
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketAssistance))
		if b == nil {
			return errors.New("bucket not found: " + bucketAssistance)
		}
		data := b.Get(taskKey(workspaceID, taskID))
		if data == nil {
			return nil
		}
		record = &AssistanceRecord{}
		return json.Unmarshal(data, record)
	})
	return record, err
}

// Artifacts lists the artifact names journaled for one task, oldest
// first.
func (c *Client) Artifacts(workspaceID, taskID int64) ([]ArtifactRecord, error) {
	var records []ArtifactRecord
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketArtifact))
		if b == nil {
			return errors.New("bucket not found: " + bucketArtifact)
		}
		return b.ForEach(func(_, v []byte) error {
			var record ArtifactRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return err
			}
			if record.WorkspaceID == workspaceID && record.TaskID == taskID {
				records = append(records, record)
			}
			return nil
		})
	})
	return records, err
}

func (c *Client) append(bucket string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return errors.New("bucket not found: " + bucket)
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, data)
	})
}

func taskKey(workspaceID, taskID int64) []byte {
	return []byte(fmt.Sprintf("%d/%d", workspaceID, taskID))
}
