// Package launch defines the core data types shared by the dataset store,
// the query engine and every output surface.
//
// Key types:
//   - Record: one immutable launch row
//   - Selection: the user-controlled site and payload range
//   - SuccessAggregate: grouped counts feeding the summary (pie) view
//   - ScatterProjection: per-record tuples feeding the distribution (scatter) view
package launch
