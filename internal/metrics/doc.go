/*
Package metrics provides Prometheus metrics for workflow runs, steps,
LLM calls and the completion cache.

# Overview

The Collector registers every metric under one namespace through
promauto, so nothing touches the Registry by hand. The Observer adapts
runner events onto the Collector; register it with Runner.WithObserver.
The Server exposes the default registry at /metrics for scraping.

# Metrics

  - Runs: total by workflow/status, duration histogram, in-flight gauge.
  - Steps: total by workflow/agent/outcome kind, duration histogram.
  - LLM: request total by provider/model/status, duration histogram,
    token counters split into prompt and completion.
  - Cache: hit and miss counters by backend.
*/
package metrics
