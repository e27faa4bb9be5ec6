// Package domain contains the core types of the KinoLens analysis
// pipeline: review records, the cleaned in-memory table, aggregation
// results, the analysis configuration, and the error taxonomy.
//
// Domain types carry no I/O. Loading, rendering and persistence live in
// adapters; the services operate purely on the types defined here.
package domain
