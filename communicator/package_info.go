// Package communicator runs a message-passing application under test conditions.
//
// An application is created from a scope describing one logical connection, and is then driven
// through two unbounded FIFO channels: it pulls input messages from an InputSource and pushes
// output messages to an OutputSink. A Communicator owns both channels and the goroutine running
// the application. Test code feeds it with SendInput, reads what it produced with ReceiveOutput
// or ReceiveNothing, and ends it with Wait, Stop or Close.
//
// Every error returned by the application itself is reported exactly once, by the first
// ReceiveOutput, Wait or Stop(true) call that observes it. Cancellation performed by the
// Communicator is never reported as an error. Any timeout that expires while the application is
// still running cancels it and waits for it to exit before returning, so no application
// outlives the calls that drive it.
package communicator
