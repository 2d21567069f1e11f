//go:build e2e

// Package e2e provides end-to-end tests for the benchmark pipeline.
//
// These tests are isolated from the standard test suite via build tags.
// They run real benchmarks against the system clock and an in-process
// results collector, so timings vary with the host.
//
// Running E2E tests:
//
//	go test -tags=e2e ./e2e/...
//
// Running all tests except E2E:
//
//	go test ./...
//
// E2E tests use:
//   - the built-in rtp and rtcp suites as real workloads
//   - the collector server from cmd/collector/server, started on a random port
//   - every output processor: console, report document and uploader
//
// Test isolation:
// Each test starts its own collector on a random port and builds its own
// suites, so tests can run in parallel.
package e2e
