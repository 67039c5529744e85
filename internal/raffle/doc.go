// Package raffle holds the dashboard's filter and aggregate pipeline.
//
// A page load fetches the full raffle set once and wraps it in a Snapshot,
// sorted most recent first. Every criteria change afterwards is answered by
// Snapshot.Derive, which runs Filter and Summarize over the cached set
// without going back to the store.
//
// Floor prices are decimal strings owned by an external system. A value that
// does not parse to a non-negative decimal is kept in the record set, counts
// toward Summary.Count, contributes zero to Summary.TotalFloorPrice and never
// satisfies a minimum floor price criterion.
package raffle
