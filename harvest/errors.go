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
	"fmt"
)

// IntegrationError is an upstream fetch failure: transport error,
// non-success status, or a structured error payload. Fatal for the run.
type IntegrationError struct {
	Integration string
	StatusCode  int
	Detail      string
	cause       error
}

func (e *IntegrationError) Error() string {
	msg := e.Integration + " integration error"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s responded with an error status code: %d", e.Integration, e.StatusCode)
	}
	if e.Detail != "" {
		msg += "\n\nDetails:\n" + e.Detail
	}
	if e.StatusCode == 0 && e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *IntegrationError) Unwrap() error {
	return e.cause
}

// NotFoundError means the API confirmed a handle does not exist.
type NotFoundError struct {
	Username string
}

func (e *NotFoundError) Error() string {
	return e.Username + " user id not found"
}

// StorageError is a failed artifact write. Non-fatal: the run reports
// degraded success, already-delivered batches stand.
type StorageError struct {
	Name  string
	cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store artifact %s: %v", e.Name, e.cause)
}

func (e *StorageError) Unwrap() error {
	return e.cause
}
