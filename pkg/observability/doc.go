/*
Package observability provides Prometheus instrumentation for the unparser.

Metrics wraps the traversal extension point (ports.WalkFunc), so every render
made through an instrumented Unparser is counted without touching the walk
itself:

	m := observability.NewMetrics(prometheus.DefaultRegisterer)
	u, err := unparse.New(defs, unparse.WithWalk(m.Walk(walk.Walk)))

Render cache lookups made by the service adapters are recorded with ObserveCache.
*/
package observability
