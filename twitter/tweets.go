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
	"encoding/json"
	"time"
)

// Tweet parses the handful of fields the pipeline routes on and keeps the
// full upstream object byte-for-byte. Everything besides the routing keys
// (metrics, entities, attachments, note_tweet, ...) passes through
// downstream untouched.
type Tweet struct {
	ID             string
	Text           string
	AuthorID       string
	ConversationID string
	CreatedAt      time.Time

	raw json.RawMessage
}

func (t *Tweet) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID             string     `json:"id"`
		Text           string     `json:"text"`
		AuthorID       string     `json:"author_id"`
		ConversationID string     `json:"conversation_id"`
		CreatedAt      *time.Time `json:"created_at"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.ID = aux.ID
	t.Text = aux.Text
	t.AuthorID = aux.AuthorID
	t.ConversationID = aux.ConversationID
	if aux.CreatedAt != nil {
		t.CreatedAt = *aux.CreatedAt
	} else {
		t.CreatedAt = time.Time{}
	}
	t.raw = append(t.raw[:0], data...)
	return nil
}

func (t Tweet) MarshalJSON() ([]byte, error) {
	if t.raw != nil {
		return t.raw, nil
	}
	// Tweets built in code (tests) have no captured payload.
	type plain struct {
		ID             string     `json:"id"`
		Text           string     `json:"text,omitempty"`
		AuthorID       string     `json:"author_id,omitempty"`
		ConversationID string     `json:"conversation_id,omitempty"`
		CreatedAt      *time.Time `json:"created_at,omitempty"`
	}
	p := plain{
		ID:             t.ID,
		Text:           t.Text,
		AuthorID:       t.AuthorID,
		ConversationID: t.ConversationID,
	}
	if !t.CreatedAt.IsZero() {
		p.CreatedAt = &t.CreatedAt
	}
	return json.Marshal(p)
}

// Fields decodes the retained payload into a key-to-raw-value map so a
// caller can splice additional keys in without disturbing the rest.
func (t Tweet) Fields() (map[string]json.RawMessage, error) {
	m := make(map[string]json.RawMessage)
	if t.raw == nil {
		b, err := t.MarshalJSON()
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, err
		}
		return m, nil
	}
	if err := json.Unmarshal(t.raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
