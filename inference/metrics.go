// Copyright 2020 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package inference

import (
	"github.com/prometheus/client_golang/prometheus"
)

type inferenceMetrics struct {
	recomputes          prometheus.Counter
	conflicts           prometheus.Counter
	inferredAdded       prometheus.Counter
	replayedStatements  prometheus.Counter
	refreshes           prometheus.Counter
	commitsTotal        prometheus.Counter
	rollbacksTotal      prometheus.Counter
	commitLatency       prometheus.Histogram
	recomputeLatency    prometheus.Histogram
	schemaSize          prometheus.Gauge
	closureTableEntries *prometheus.GaugeVec
}

var metrics inferenceMetrics

func init() {
	metrics = inferenceMetrics{
		recomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rdfsinfer",
			Subsystem: "inference",
			Name:      "recomputes_total",
			Help:      `The number of times the closure tables were rebuilt from the schema.`,
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rdfsinfer",
			Subsystem: "inference",
			Name:      "conflicts_total",
			Help:      `The number of transactions aborted because of a concurrent schema modification.`,
		}),
		inferredAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rdfsinfer",
			Subsystem: "inference",
			Name:      "inferred_added_total",
			Help:      `The number of inferred statements that were new to their transaction.`,
		}),
		replayedStatements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rdfsinfer",
			Subsystem: "inference",
			Name:      "replayed_statements_total",
			Help:      `The number of explicit statements forward chained again during a full replay.`,
		}),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rdfsinfer",
			Subsystem: "inference",
			Name:      "snapshot_refreshes_total",
			Help:      `The number of transactions replayed on a newer store snapshot before deriving every inferred statement again.`,
		}),
		commitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rdfsinfer",
			Subsystem: "inference",
			Name:      "commits_total",
			Help:      `The number of successfully committed transactions.`,
		}),
		rollbacksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rdfsinfer",
			Subsystem: "inference",
			Name:      "rollbacks_total",
			Help:      `The number of rolled back transactions, failed commits included.`,
		}),
		commitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rdfsinfer",
			Subsystem: "inference",
			Name:      "commit_latency_seconds",
			Help:      `The time taken to commit a transaction, replay included.`,
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 16),
		}),
		recomputeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rdfsinfer",
			Subsystem: "inference",
			Name:      "recompute_latency_seconds",
			Help:      `The time taken to rebuild the schema cache and the closure tables.`,
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 16),
		}),
		schemaSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rdfsinfer",
			Subsystem: "inference",
			Name:      "schema_size",
			Help:      `The number of entries held by the schema cache.`,
		}),
		closureTableEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "rdfsinfer",
			Subsystem: "inference",
			Name:      "closure_table_entries",
			Help:      `The number of elements held by each closure table.`,
		}, []string{"table"}),
	}
	prometheus.MustRegister(
		metrics.recomputes,
		metrics.conflicts,
		metrics.inferredAdded,
		metrics.replayedStatements,
		metrics.refreshes,
		metrics.commitsTotal,
		metrics.rollbacksTotal,
		metrics.commitLatency,
		metrics.recomputeLatency,
		metrics.schemaSize,
		metrics.closureTableEntries,
	)
}
