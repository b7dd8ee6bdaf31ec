/*
Package observability provides Prometheus instrumentation for form trees.

Metrics translates the lifecycle hooks of a tree (mounts, commits and
validator outcomes) into counters and histograms. Combine its hooks with
others through domain.MergeHooks.
*/
package observability
