/*
Package service coordinates renders for the long-running adapters (HTTP, MCP).

It resolves grammars, memoizes one unparser per grammar and output mode, and
fronts them with an optional render cache. Concurrent misses on the same
request are serialized with a keyed lock, optionally backed by a distributed
locker so replicas sharing a cache render each request once.
*/
package service
