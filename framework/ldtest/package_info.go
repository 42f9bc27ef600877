// Package ldtest contains a test runner framework that is similar to Go's testing package,
// but is run as regular Go application code rather than Go tests. It also adds richer
// capabilities for configuration, logging, and result reporting.
//
// The communicator self-test suite and the scenario runner use it so that the same checks can
// be run from the command line and from "go test".
package ldtest
