// Package core is the entry point shared by the HTTP API and the CLI.
//
// [Service] wraps the table operations (merge, join, concat, duplicate
// checks, trim_na, type inference, coercion) and the PostgreSQL table
// source with the settings that belong to a deployment rather than to a
// single call:
//
//   - defaults such as the duplicate report cap and the name given to
//     unnamed sequences
//   - input limits on table count and row count
//   - a concurrency limit, so large requests cannot pile up in memory
//   - an operation id per call, attached to every log entry
//
// # Error Handling
//
// Operations return the errs taxonomy unchanged. [MapError] turns any
// error into a coded [UserMessage] for display:
//
//   - PARAM001, DUP001-DUP002, SHAPE001, VAL001-VAL002, TYPE001, NI001:
//     table operation errors
//   - REQ001-REQ007: request limits, cancellation and configuration
//   - DB001-DB006: database errors
package core
