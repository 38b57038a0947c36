package jsonkit

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	eng "github.com/reoring/jsonkit/internal/engine"
	"github.com/reoring/jsonkit/source/gojson"
	jsonsrc "github.com/reoring/jsonkit/source/json"
	yamlsrc "github.com/reoring/jsonkit/source/yaml"
)

// Driver names accepted by DecodeOpt.Driver and SetDefaultDriver.
const (
	DriverGoJSON = gojson.Name
	DriverStdlib = jsonsrc.Name
	DriverYAML   = yamlsrc.Name
)

type driverFunc func(r io.Reader) eng.TokenSource

var (
	driverMu      sync.RWMutex
	drivers       = map[string]driverFunc{DriverGoJSON: gojson.NewReader, DriverStdlib: jsonsrc.NewReader, DriverYAML: yamlsrc.NewReader}
	defaultDriver = DriverGoJSON
)

// SetDefaultDriver replaces the tokenizer used when DecodeOpt names none.
func SetDefaultDriver(name string) error {
	driverMu.Lock()
	defer driverMu.Unlock()
	if _, ok := drivers[name]; !ok {
		return fmt.Errorf("jsonkit: unknown driver %q (known: %s)", name, strings.Join(driverNamesLocked(), ", "))
	}
	defaultDriver = name
	return nil
}

// Drivers lists the registered tokenizer names in sorted order.
func Drivers() []string {
	driverMu.RLock()
	defer driverMu.RUnlock()
	return driverNamesLocked()
}

func driverNamesLocked() []string {
	out := make([]string, 0, len(drivers))
	for k := range drivers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func openSource(r io.Reader, opt DecodeOpt) (eng.TokenSource, error) {
	name := opt.Driver
	if opt.Relaxed {
		name = DriverYAML
	}
	driverMu.RLock()
	if name == "" {
		name = defaultDriver
	}
	fn, ok := drivers[name]
	driverMu.RUnlock()
	if !ok {
		return nil, newIssue(CodeParseError, "", fmt.Sprintf("unknown driver %q", name), nil)
	}
	src := fn(r)
	enforced := eng.WrapWithEnforcement(src, eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		IssueSink:   warnSink(),
	})
	return enforced, nil
}

func warnSink() func(eng.SimpleIssue) {
	return func(si eng.SimpleIssue) {
		Logger().Warn("duplicate key", zap.String("path", si.Path), zap.String("code", si.Code))
	}
}

func openBytes(b []byte, opt DecodeOpt) (eng.TokenSource, error) {
	return openSource(bytes.NewReader(b), opt)
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}
