// Package services implements the analysis stages: preprocessing,
// lexical analysis, aggregation, and the pipeline orchestrator.
//
// Stages are explicit functions taking and returning immutable data:
// Preprocess turns the raw dataset into a CleanTable, AnalyzeText and
// Aggregate both read that table independently, and Pipeline sequences
// everything and owns the output directory lifecycle.
package services
