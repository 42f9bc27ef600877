// Package sampleapps contains small applications that speak the communicator's message
// protocol, using JSON-like ldvalue.Value messages and scopes in the style of ASGI events. They
// are used by the self-check suite, the scenario files and tests.
//
// Every message is an object with a "type" property. Every application accepts an
// {"type": "app.disconnect"} input as a request to return normally.
package sampleapps
