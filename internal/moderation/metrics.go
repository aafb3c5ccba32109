package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var pipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "exile_pipeline_runs_total",
	Help: "Number of pipeline runs by pipeline and final state",
}, []string{"pipeline", "outcome"})

var pipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "exile_pipeline_duration_sec",
	Help: "Duration of pipeline runs",
}, []string{"pipeline"})

var platformActionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "exile_platform_action_failures_total",
	Help: "Number of platform calls that failed",
}, []string{"action"})

var guardTriggers = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "exile_guard_triggers_total",
	Help: "Number of times a join or update guard applied a sanction",
}, []string{"guard"})

var drunkTankCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "exile_drunk_tank_total",
	Help: "Number of actors sent to the drunk tank",
})

var releaseAllSkipped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "exile_release_all_skipped_total",
	Help: "Records skipped by bulk release because the member was not present",
})
