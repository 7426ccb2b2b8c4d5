// Package types defines the storage contracts, entity types, and standard
// errors for the docflow document relationship graph.
//
// Documents are identified by a DocumentRef (id and kind). Links are directed,
// typed edges between two documents; the graph engine treats them as
// undirected for reachability and keeps their orientation for display.
package types
