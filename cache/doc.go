// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cache provides the request cache for session aggregates.

The Store interface has exactly the four operations the optimistic mutation
layer depends on:

	CancelInFlight(key)
	Snapshot(key) (view, ok)
	Write(key, view)
	Invalidate(key)

Memory is the in-process implementation. Snapshot and Write traffic in deep
copies, so a snapshot taken before an optimistic patch restores the exact
pre-patch bytes when written back.

Invalidate marks an entry stale rather than deleting it: the presentation
layer keeps rendering the last known value while a refetch is pending
(serve stale, revalidate in the background).
*/
package cache
