// Package scenarios describes scripted conversations with the sample applications in JSON or
// YAML files, and runs them through a communicator.
//
// A scenario names an application, the scope to create it with, and a list of steps. Each step
// does exactly one thing: send an input, expect an output, expect silence, expect a fault or a
// timeout, wait for the application to finish, or stop it.
//
// A set of scenarios is built in (see Builtin); more can be loaded from a directory with LoadDir.
package scenarios
