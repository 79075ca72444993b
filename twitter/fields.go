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

// Field supersets requested on every timeline read. Keeping the request
// this wide guarantees referenced tweets and their authors arrive in the
// same response, so conversation reconstruction never needs a second
// lookup.

var TweetFields = []string{
	"article",
	"attachments",
	"author_id",
	"card_uri",
	"community_id",
	"conversation_id",
	"created_at",
	"entities",
	"geo",
	"id",
	"in_reply_to_user_id",
	"lang",
	"media_metadata",
	"note_tweet",
	"public_metrics",
	"referenced_tweets",
	"reply_settings",
	"scopes",
	"source",
	"text",
	"withheld",
}

var UserFields = []string{
	"affiliation",
	"connection_status",
	"created_at",
	"description",
	"entities",
	"id",
	"is_identity_verified",
	"location",
	"most_recent_tweet_id",
	"name",
	"parody",
	"pinned_tweet_id",
	"profile_banner_url",
	"profile_image_url",
	"protected",
	"public_metrics",
	"receives_your_dm",
	"subscription",
	"subscription_type",
	"url",
	"username",
	"verified",
	"verified_followers_count",
	"verified_type",
	"withheld",
}

var MediaFields = []string{
	"alt_text",
	"duration_ms",
	"height",
	"media_key",
	"non_public_metrics",
	"organic_metrics",
	"preview_image_url",
	"promoted_metrics",
	"public_metrics",
	"type",
	"url",
	"variants",
	"width",
}

var PollFields = []string{
	"duration_minutes",
	"end_datetime",
	"id",
	"options",
	"voting_status",
}

var PlaceFields = []string{
	"contained_within",
	"country",
	"country_code",
	"full_name",
	"geo",
	"id",
	"name",
	"place_type",
}

var Expansions = []string{
	"article.cover_media",
	"article.media_entities",
	"attachments.media_keys",
	"attachments.media_source_tweet",
	"attachments.poll_ids",
	"author_id",
	"edit_history_tweet_ids",
	"entities.mentions.username",
	"geo.place_id",
	"in_reply_to_user_id",
	"entities.note.mentions.username",
	"referenced_tweets.id",
	"referenced_tweets.id.author_id",
}
