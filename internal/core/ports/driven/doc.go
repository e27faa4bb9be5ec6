// Package driven defines the interfaces the analysis core depends on.
// Adapters (dataset loaders, the segmenter, the chart renderer, the
// report writer, the result exporter) implement these interfaces.
package driven
