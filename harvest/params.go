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

// CleanQueryParams drops unset parameters before they reach the
// transport layer. A nil value means "omit"; a pointer to the empty
// string means "send blank" and survives the cleaning, so callers can
// tell the two apart.
func CleanQueryParams(params map[string]*string) map[string]string {
	cleaned := make(map[string]string, len(params))
	for key, value := range params {
		if value == nil {
			continue
		}
		cleaned[key] = *value
	}
	return cleaned
}

// param marks a query parameter present only when its value is
// non-empty.
func param(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
