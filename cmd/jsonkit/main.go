package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/reoring/jsonkit"
	"github.com/reoring/jsonkit/i18n"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch sub := os.Args[1]; sub {
	case "fmt":
		err = fmtCmd(os.Args[2:], os.Stdin, os.Stdout)
	case "build":
		err = buildCmd(os.Args[2:], os.Stdout)
	case "dupkeys":
		err = dupkeysCmd(os.Args[2:], os.Stdin, os.Stdout)
	case "get":
		err = getCmd(os.Args[2:], os.Stdin, os.Stdout)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatalf("%s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "jsonkit CLI\n\nUsage:\n  jsonkit fmt [-driver name] [-relaxed] [-min] [-naming style] [-html-escape] [file]\n  jsonkit build [-min] path=value [path=value ...]\n  jsonkit dupkeys [-driver name] [-relaxed] [-max n] [file]\n  jsonkit get [-relaxed] [-min] query [file]\n\nNotes:\n  - Input defaults to stdin. Values given to build are parsed as JSON when possible, otherwise kept as strings.")
}

// common registers the flags shared by every subcommand.
type common struct {
	verbose bool
	lang    string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "v", false, "enable development logging on stderr")
	fs.StringVar(&c.lang, "lang", "en", "message language (en, ja)")
}

func (c *common) apply() error {
	i18n.SetLanguage(c.lang)
	if !c.verbose {
		return nil
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	jsonkit.SetLogger(l)
	return nil
}

func fmtCmd(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	var c common
	var driver, naming, dup string
	var relaxed, minimal, html bool
	var depth int
	c.register(fs)
	fs.StringVar(&driver, "driver", "", "tokenizer: "+strings.Join(jsonkit.Drivers(), ", "))
	fs.BoolVar(&relaxed, "relaxed", false, "accept unquoted keys, comments and single quotes")
	fs.BoolVar(&minimal, "min", false, "unquoted keys; drop nulls and empty values")
	fs.StringVar(&naming, "naming", "raw", "key naming style (raw, lower_camel, upper_camel, lower_underscore, upper_underscore)")
	fs.BoolVar(&html, "html-escape", false, "escape <, > and & in strings")
	fs.StringVar(&dup, "dup", "ignore", "duplicate key handling (ignore, warn, error)")
	fs.IntVar(&depth, "max-depth", 0, "maximum nesting depth; 0 means unlimited")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.apply(); err != nil {
		return err
	}
	style, ok := jsonkit.NamingStyleByName(naming)
	if !ok {
		return fmt.Errorf("unknown naming style %q", naming)
	}
	sev, err := parseSeverity(dup)
	if err != nil {
		return err
	}
	in, closeIn, err := input(fs.Args(), stdin)
	if err != nil {
		return err
	}
	defer closeIn()

	v, err := jsonkit.DecodeReader(in, jsonkit.DecodeOpt{Driver: driver, Relaxed: relaxed, OnDuplicateKey: sev, MaxDepth: depth})
	if err != nil {
		return err
	}
	base := jsonkit.MaxSettings
	if minimal {
		base = jsonkit.MinSettings
	}
	s := jsonkit.NewSettingsBuilder().From(base).NamingStyle(style).HTMLEscape(html).Build()
	if err := jsonkit.EncodeTo(stdout, v, s); err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout)
	return err
}

func buildCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	var c common
	var minimal bool
	c.register(fs)
	fs.BoolVar(&minimal, "min", false, "unquoted keys; drop nulls and empty values")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.apply(); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no assignments given")
	}
	b := jsonkit.NewBuilder()
	for _, a := range fs.Args() {
		path, val, ok := strings.Cut(a, "=")
		if !ok {
			return fmt.Errorf("assignment %q: expected path=value", a)
		}
		b.Set(path, parseValue(val))
	}
	doc, err := b.Build()
	if err != nil {
		return err
	}
	s := jsonkit.MaxSettings
	if minimal {
		s = jsonkit.MinSettings
	}
	if err := jsonkit.EncodeTo(stdout, doc, s); err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout)
	return err
}

func dupkeysCmd(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("dupkeys", flag.ContinueOnError)
	var c common
	var driver string
	var relaxed, first bool
	var limit int
	c.register(fs)
	fs.StringVar(&driver, "driver", "", "tokenizer: "+strings.Join(jsonkit.Drivers(), ", "))
	fs.BoolVar(&relaxed, "relaxed", false, "accept unquoted keys, comments and single quotes")
	fs.BoolVar(&first, "first", false, "stop at the first duplicate")
	fs.IntVar(&limit, "max", -1, "maximum number of reported duplicates; -1 means unlimited")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.apply(); err != nil {
		return err
	}
	in, closeIn, err := input(fs.Args(), stdin)
	if err != nil {
		return err
	}
	defer closeIn()

	sev := jsonkit.Warn
	if first {
		sev = jsonkit.Error
	}
	iss, err := jsonkit.DetectDuplicateKeysReader(in, sev, limit, jsonkit.DecodeOpt{Driver: driver, Relaxed: relaxed})
	if err != nil {
		return err
	}
	for _, it := range iss {
		if _, err := fmt.Fprintf(stdout, "%s\t%s\t%s\n", it.Code, it.Path, it.Message); err != nil {
			return err
		}
	}
	if len(iss) > 0 {
		return fmt.Errorf("%d issue(s) found", len(iss))
	}
	return nil
}

func getCmd(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	var c common
	var relaxed, minimal bool
	c.register(fs)
	fs.BoolVar(&relaxed, "relaxed", false, "accept unquoted keys, comments and single quotes")
	fs.BoolVar(&minimal, "min", false, "print composite results in the compact unquoted form")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.apply(); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no query given")
	}
	in, closeIn, err := input(fs.Args()[1:], stdin)
	if err != nil {
		return err
	}
	defer closeIn()

	// gjson only reads strict JSON, so the document is normalized first.
	v, err := jsonkit.DecodeReader(in, jsonkit.DecodeOpt{Relaxed: relaxed})
	if err != nil {
		return err
	}
	doc, err := jsonkit.Encode(v)
	if err != nil {
		return err
	}
	res := gjson.Get(doc, fs.Arg(0))
	if !res.Exists() {
		return fmt.Errorf("query %q matched nothing", fs.Arg(0))
	}
	out := res.Raw
	if minimal && (res.IsObject() || res.IsArray()) {
		sub, err := jsonkit.Decode(res.Raw)
		if err != nil {
			return err
		}
		if out, err = jsonkit.Encode(sub, jsonkit.MinSettings); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(stdout, out)
	return err
}

// parseValue reads a build value as JSON, falling back to the literal string.
func parseValue(s string) any {
	v, err := jsonkit.Decode(s)
	if err != nil {
		return s
	}
	return v
}

func parseSeverity(s string) (jsonkit.Severity, error) {
	switch strings.ToLower(s) {
	case "", "ignore":
		return jsonkit.Ignore, nil
	case "warn":
		return jsonkit.Warn, nil
	case "error":
		return jsonkit.Error, nil
	}
	return jsonkit.Ignore, fmt.Errorf("unknown severity %q", s)
}

func input(args []string, stdin io.Reader) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
