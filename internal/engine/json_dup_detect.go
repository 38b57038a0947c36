package engine

import (
	"errors"
	"io"
)

// DuplicateStrictness controls duplicate key handling in detection helpers.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// DetectDuplicateKeys walks every token of src and reports duplicated object
// keys. If onDup is DupIgnore, no issues are produced. maxIssues < 0 means
// unlimited; 0 disables reporting; > 0 caps the result and appends a
// "truncated" marker. DupError stops at the first duplicate.
func DetectDuplicateKeys(src TokenSource, onDup DuplicateStrictness, maxIssues int) ([]SimpleIssue, error) {
	if onDup == DupIgnore || maxIssues == 0 {
		return nil, nil
	}
	var issues []SimpleIssue
	enforced := &enforcingTokenSource{
		inner: src,
		opt: EnforceOptions{
			OnDuplicate: DupWarn,
			IssueSink:   func(si SimpleIssue) { issues = append(issues, si) },
		},
	}
	for {
		_, err := enforced.NextToken()
		if errors.Is(err, io.EOF) {
			if len(enforced.stack) > 0 {
				return issues, io.ErrUnexpectedEOF
			}
			return issues, nil
		}
		if err != nil {
			return issues, err
		}
		if len(issues) == 0 {
			continue
		}
		if onDup == DupError {
			return issues[:1], nil
		}
		if maxIssues > 0 && len(issues) >= maxIssues {
			issues = append(issues[:maxIssues], SimpleIssue{Code: "truncated", Path: "", Message: "max issues reached"})
			return issues, nil
		}
	}
}
