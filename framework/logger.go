package framework

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger is the minimal logging interface used throughout the module. A *log.Logger satisfies it.
type Logger interface {
	Println(args ...interface{})
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Println(args ...interface{})                {}
func (n nullLogger) Printf(message string, args ...interface{}) {}

// NullLogger returns a Logger that discards everything.
func NullLogger() Logger { return nullLogger{} }

type CapturedMessage struct {
	Time    time.Time
	Message string
}

type CapturedOutput []CapturedMessage

// CapturingLogger records all output from a test scope. See comments on ldtest.(*T).DebugLogger()
// for the rules of logging in parent/child scopes.
//
// Unlike the test scope that owns it, a CapturingLogger can be written to from any goroutine; the
// communicator logs from the goroutine that runs the application.
type CapturingLogger struct {
	output   []CapturedMessage
	children []*CapturingLogger
	lock     sync.Mutex
}

func (l *CapturingLogger) Println(args ...interface{}) {
	m := strings.TrimRight(fmt.Sprintln(args...), "\r\n") // Sprintln appends a newline
	l.append(CapturedMessage{Time: time.Now(), Message: m})
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.append(CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)})
}

func (l *CapturingLogger) append(m CapturedMessage) {
	var children []*CapturingLogger
	l.lock.Lock()
	if len(l.children) == 0 {
		l.output = append(l.output, m)
	} else {
		children = append([]*CapturingLogger(nil), l.children...)
	}
	l.lock.Unlock()
	for _, c := range children {
		c.append(m)
	}
}

// Output returns a copy of everything captured so far.
func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}

// AddChildLogger redirects further output to child, after seeding it with a copy of the
// output captured so far.
func (l *CapturingLogger) AddChildLogger(child *CapturingLogger) {
	l.lock.Lock()
	l.children = append(l.children, child)
	output := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	child.lock.Lock()
	child.output = append(output, child.output...)
	child.lock.Unlock()
}

func (l *CapturingLogger) RemoveChildLogger(child *CapturingLogger) {
	l.lock.Lock()
	for i, c := range l.children {
		if c == child {
			l.children = append(l.children[0:i], l.children[i+1:]...)
			break
		}
	}
	l.lock.Unlock()
}

func (output CapturedOutput) ToString(prefix string) string {
	lines := make([]string, 0, len(output))
	for _, m := range output {
		lines = append(lines, fmt.Sprintf("%s[%s] %s", prefix, m.Time.Format(timestampFormat), m.Message))
	}
	return strings.Join(lines, "\n")
}

type prefixedLogger struct {
	base   Logger
	prefix string
}

// LoggerWithPrefix returns a Logger that prepends prefix to every message, such as the name of
// the application a communicator is driving.
func LoggerWithPrefix(baseLogger Logger, prefix string) Logger {
	if baseLogger == nil {
		baseLogger = NullLogger()
	}
	return prefixedLogger{baseLogger, prefix}
}

func (p prefixedLogger) Println(args ...interface{}) {
	p.base.Println(p.prefix + strings.TrimRight(fmt.Sprintln(args...), "\r\n"))
}

func (p prefixedLogger) Printf(message string, args ...interface{}) {
	p.base.Printf(p.prefix+message, args...)
}
