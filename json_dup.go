package jsonkit

import (
	"bytes"
	"io"

	eng "github.com/reoring/jsonkit/internal/engine"
)

// DetectDuplicateKeysBytes reports duplicated object keys in data. With Warn
// every duplicate is reported; with Error only the first. maxIssues < 0 means
// unlimited; a positive cap appends a truncated marker. Parse errors from the
// tokenizer are returned as parse_error issues.
func DetectDuplicateKeysBytes(data []byte, onDup Severity, maxIssues int, opts ...DecodeOpt) (Issues, error) {
	return DetectDuplicateKeysReader(bytes.NewReader(data), onDup, maxIssues, opts...)
}

// DetectDuplicateKeysReader is DetectDuplicateKeysBytes over a stream.
func DetectDuplicateKeysReader(r io.Reader, onDup Severity, maxIssues int, opts ...DecodeOpt) (Issues, error) {
	opt := lastDecodeOpt(opts)
	// Detection runs its own duplicate tracking on the bare source.
	opt.OnDuplicateKey, opt.MaxDepth = Ignore, 0
	src, err := openSource(r, opt)
	if err != nil {
		return nil, err
	}
	si, err := eng.DetectDuplicateKeys(src, toEngineDup(onDup), maxIssues)
	if err != nil {
		return fromEngineIssues(si), toIssues(err, src.Location())
	}
	return fromEngineIssues(si), nil
}

func fromEngineIssues(si []eng.SimpleIssue) Issues {
	var iss Issues
	for _, s := range si {
		iss = AppendIssues(iss, newIssue(s.Code, s.Path, "", nil)...)
	}
	return iss
}
