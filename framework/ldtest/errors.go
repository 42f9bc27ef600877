package ldtest

import (
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strings"
)

// ErrorWithStacktrace is a test failure along with the frames of test code that led to it.
type ErrorWithStacktrace struct {
	Message    string
	Stacktrace []StacktraceInfo
}

// StacktraceInfo is one frame of a failure's stacktrace.
type StacktraceInfo struct {
	FileName string
	Package  string
	Function string
	Line     int
}

func (e ErrorWithStacktrace) Error() string { return e.Message }

func (s StacktraceInfo) String() string {
	packageName := strings.TrimPrefix(s.Package, modulePath()+"/")
	return fmt.Sprintf("%s.%s (%s:%d)", packageName, s.Function, s.FileName, s.Line)
}

// Packages and functions, relative to the module path, whose frames are test machinery rather
// than the test itself. A failure inside them is reported at the test or scenario step that
// called them.
var (
	machineryPackages  = []string{"framework/helpers", "communicator"} //nolint:gochecknoglobals
	machineryFunctions = []string{"scenarios.runStep"}                 //nolint:gochecknoglobals

	// assertion libraries used from tests
	externalMachineryPackages = []string{ //nolint:gochecknoglobals
		"github.com/stretchr/testify/",
		"github.com/launchdarkly/go-test-helpers/",
	}
)

var errorTraceInMessageRegex = regexp.MustCompile(`^(?s:\s*Error Trace:.*\sError:\s*)`)

// transformError attaches a stacktrace to a failure, after removing any "Error Trace" block that
// testify put in the message, since that trace would point into the machinery.
func transformError(err error, stacktrace []StacktraceInfo) error {
	message := err.Error()
	if strings.Contains(message, "Error Trace:") {
		message = strings.TrimSpace(errorTraceInMessageRegex.ReplaceAllLiteralString(message, ""))
	}
	if len(stacktrace) == 0 {
		return errors.New(message)
	}
	return ErrorWithStacktrace{Message: message, Stacktrace: stacktrace}
}

func ldtestPackageName() string {
	pc, _, _, ok := runtime.Caller(0)
	if !ok {
		return "?"
	}
	f := runtime.FuncForPC(pc)
	if f == nil {
		return "?"
	}
	packageName, _ := splitFunctionName(f.Name())
	return packageName
}

// modulePath is the import path of this module, derived from ldtest's own package path.
func modulePath() string {
	return strings.TrimSuffix(ldtestPackageName(), "/framework/ldtest")
}

func isMachinery(packageName, fullFunctionName string) bool {
	root := modulePath() + "/"
	if packageName == ldtestPackageName() {
		return true
	}
	for _, p := range machineryPackages {
		if packageName == root+p || strings.HasPrefix(packageName, root+p+"/") {
			return true
		}
	}
	for _, fn := range machineryFunctions {
		// closures inside the function are named fn.func1 and so on
		if fullFunctionName == root+fn || strings.HasPrefix(fullFunctionName, root+fn+".") {
			return true
		}
	}
	for _, p := range externalMachineryPackages {
		if strings.HasPrefix(packageName, p) {
			return true
		}
	}
	return false
}

// getStacktrace returns the caller's stack up to the ldtest.Run that started the test, leaving
// out functions that called T.Helper. Unless raw is true, frames from the test machinery are left
// out too.
func getStacktrace(raw bool, helperFns []string) []StacktraceInfo {
	var frames []StacktraceInfo
	thisPackage := ldtestPackageName()
	for depth := 1; ; depth++ { // 0 is getStacktrace itself
		pc, file, line, ok := runtime.Caller(depth)
		if !ok {
			break
		}
		f := runtime.FuncForPC(pc)
		if f == nil {
			break
		}
		fullName := f.Name()
		packageName, functionName := splitFunctionName(fullName)
		if packageName == thisPackage && functionName == "Run" {
			break
		}
		if isHelper(fullName, helperFns) || (!raw && isMachinery(packageName, fullName)) {
			continue
		}
		frames = append(frames, StacktraceInfo{
			FileName: file[strings.LastIndex(file, "/")+1:],
			Package:  packageName,
			Function: functionName,
			Line:     line,
		})
	}
	return frames
}

func isHelper(fullFunctionName string, helperFns []string) bool {
	for _, h := range helperFns {
		if h == fullFunctionName {
			return true
		}
	}
	return false
}

// splitFunctionName splits a runtime function name such as
// "github.com/a/b/pkg.(*T).Method.func1" into its package path and the rest.
func splitFunctionName(fullName string) (packageName, functionName string) {
	lastSlash := strings.LastIndex(fullName, "/")
	dot := strings.Index(fullName[lastSlash+1:], ".")
	if dot < 0 {
		return fullName, ""
	}
	packageName = fullName[:lastSlash+1+dot]
	return packageName, fullName[len(packageName)+1:]
}
