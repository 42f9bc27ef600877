// Package framework contains the low-level infrastructure shared by the communicator and the
// conformance runner. The base package holds the Logger abstraction; the subpackages are:
//
// 1. opt: a small optional-value type.
//
// 2. helpers: assertion helpers that work with anything resembling testing.T, including
// helpers for reading output from a running application.
//
// 3. ldtest: a test runner similar to Go's testing package that can be run as regular
// application code, used by the self-check command.
package framework
