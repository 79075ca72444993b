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

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "harvest_runs_total",
		Help: "Harvesting runs started",
	})
	RunFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "harvest_run_failures_total",
		Help: "Harvesting runs ended by a fatal error",
	})
	PagesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "harvest_pages_fetched_total",
		Help: "Timeline pages fetched",
	})
	TweetsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "harvest_tweets_processed_total",
		Help: "Tweets merged into conversations",
	})
	DeliveryAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "harvest_delivery_attempts_total",
		Help: "Webhook delivery attempts, success or failure",
	})
	DeliveryFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "harvest_delivery_failures_total",
		Help: "Webhook delivery attempts that failed",
	})
	ArtifactsStored = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "harvest_artifacts_stored_total",
		Help: "Conversation batch files stored",
	})
)

func init() {
	prometheus.MustRegister(
		RunsTotal,
		RunFailures,
		PagesFetched,
		TweetsProcessed,
		DeliveryAttempts,
		DeliveryFailures,
		ArtifactsStored,
	)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
