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
	"strings"

	"github.com/kylemcc/twitter-text-go/extract"
)

// EscapeMentions defuses @mentions in text destined for task logs or
// re-posting, leaving mentions that are part of a URL alone.
func EscapeMentions(message string) string {
	entries := extract.ExtractMentionedScreenNames(message)
	urlEntries := extract.ExtractUrls(message)

	var reps []string

loop:
	for _, entry := range entries {
		for _, urlEntry := range urlEntries {
			if urlEntry.Range.Start <= entry.Range.Start && entry.Range.Stop <= urlEntry.Range.Stop {
				continue loop
			}
		}
		screenname, _ := entry.ScreenName()
		reps = append(reps, "@"+screenname, "@."+screenname)
	}
	return strings.NewReplacer(reps...).Replace(message)
}

// Preview is a short, mention-safe rendering of a conversation's root
// tweet for diagnostics.
func Preview(c Conversation, max int) string {
	if len(c.Tweets) == 0 {
		return ""
	}
	text := EscapeMentions(strings.TrimSpace(c.Tweets[0].Tweet.Text))
	runes := []rune(text)
	if max > 0 && len(runes) > max {
		return string(runes[:max]) + "…"
	}
	return text
}
