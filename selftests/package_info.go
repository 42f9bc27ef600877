// Package selftests contains a suite that checks the communicator's guarantees against the
// sample applications, and runs the scenario files.
//
// Tests in this package use other packages as follows:
//
// communicator: the harness under test
//
// sampleapps: the applications it drives
//
// scenarios: scripted conversations loaded from data files
//
// ldtest: the basic test scope framework
package selftests
