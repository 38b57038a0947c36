// Package yaml is the relaxed tokenizer. YAML flow syntax is a superset of
// JSON, so this driver accepts standard JSON plus unquoted keys, single-quoted
// strings, comments and trailing commas in flow collections. Compact
// unquoted-key output such as {a:1} is accepted too: inside flow collections a
// blank is inserted after each bare ':' before the document reaches yaml.v3.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	eng "github.com/reoring/jsonkit/internal/engine"
)

// Name identifies this driver in logs and CLI flags.
const Name = "yaml"

type source struct {
	r     io.Reader
	dec   *yaml.Decoder
	queue []eng.Token
	err   error
}

// NewReader wraps an io.Reader into an engine.TokenSource. The input is read
// fully on the first token; documents are then decoded one at a time and every
// document after the first is surfaced as additional tokens so the caller can
// reject trailing data.
func NewReader(r io.Reader) eng.TokenSource {
	return &source{r: r}
}

// NewBytes wraps a byte slice into an engine.TokenSource.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	if s.dec == nil && s.err == nil {
		b, err := io.ReadAll(s.r)
		if err != nil {
			s.err = err
			return eng.Token{}, err
		}
		s.dec = yaml.NewDecoder(bytes.NewReader(spaceFlowColons(b)))
	}
	if len(s.queue) == 0 {
		if err := s.load(); err != nil {
			return eng.Token{}, err
		}
	}
	t := s.queue[0]
	s.queue = s.queue[1:]
	return t, nil
}

func (s *source) load() error {
	if s.err != nil {
		return s.err
	}
	var doc yaml.Node
	if err := s.dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			s.err = io.EOF
		} else {
			s.err = err
		}
		return s.err
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			s.queue = append(s.queue, eng.Token{Kind: eng.KindNull, Offset: -1})
			return nil
		}
		root = root.Content[0]
	}
	if err := s.emit(root, 0); err != nil {
		s.err = err
		s.queue = nil
		return err
	}
	return nil
}

// maxAliasDepth bounds alias expansion so self-referencing anchors cannot
// loop forever.
const maxAliasDepth = 64

func (s *source) emit(n *yaml.Node, aliasDepth int) error {
	switch n.Kind {
	case yaml.AliasNode:
		if aliasDepth >= maxAliasDepth || n.Alias == nil {
			return fmt.Errorf("yaml: alias nesting too deep at line %d", n.Line)
		}
		return s.emit(n.Alias, aliasDepth+1)
	case yaml.MappingNode:
		s.push(eng.Token{Kind: eng.KindBeginObject})
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind == yaml.AliasNode && k.Alias != nil {
				k = k.Alias
			}
			if k.Kind != yaml.ScalarNode {
				return fmt.Errorf("yaml: unsupported non-scalar mapping key at line %d", k.Line)
			}
			s.push(eng.Token{Kind: eng.KindKey, String: k.Value})
			if err := s.emit(n.Content[i+1], aliasDepth); err != nil {
				return err
			}
		}
		s.push(eng.Token{Kind: eng.KindEndObject})
	case yaml.SequenceNode:
		s.push(eng.Token{Kind: eng.KindBeginArray})
		for _, c := range n.Content {
			if err := s.emit(c, aliasDepth); err != nil {
				return err
			}
		}
		s.push(eng.Token{Kind: eng.KindEndArray})
	case yaml.ScalarNode:
		t, err := scalarToken(n)
		if err != nil {
			return err
		}
		s.push(t)
	default:
		return fmt.Errorf("yaml: unexpected node kind %d at line %d", n.Kind, n.Line)
	}
	return nil
}

func (s *source) push(t eng.Token) {
	t.Offset = -1
	s.queue = append(s.queue, t)
}

func scalarToken(n *yaml.Node) (eng.Token, error) {
	switch n.ShortTag() {
	case "!!null":
		return eng.Token{Kind: eng.KindNull}, nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return eng.Token{}, fmt.Errorf("yaml: invalid bool %q at line %d", n.Value, n.Line)
		}
		return eng.Token{Kind: eng.KindBool, Bool: b}, nil
	case "!!int":
		return eng.Token{Kind: eng.KindNumber, Number: normalizeInt(n.Value)}, nil
	case "!!float":
		return eng.Token{Kind: eng.KindNumber, Number: normalizeFloat(n.Value)}, nil
	default:
		return eng.Token{Kind: eng.KindString, String: n.Value}, nil
	}
}

// normalizeInt rewrites YAML integer forms (0x1F, 0o17, 1_000) as decimal text.
// Plain decimal input is returned untouched.
func normalizeInt(s string) string {
	if isDecimal(s) {
		return s
	}
	var bi big.Int
	if _, ok := bi.SetString(s, 0); ok {
		return bi.String()
	}
	return s
}

func normalizeFloat(s string) string {
	switch strings.ToLower(s) {
	case ".inf", "+.inf":
		return "+Inf"
	case "-.inf":
		return "-Inf"
	case ".nan":
		return "NaN"
	}
	return s
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// spaceFlowColons inserts a blank after every ':' that sits inside a flow
// collection, outside quoted scalars and comments, and is not already followed
// by whitespace. Block-context text is left alone.
func spaceFlowColons(b []byte) []byte {
	var out []byte
	depth := 0
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch c {
		case '"', '\'':
			if !startsScalar(b, i) {
				break
			}
			j := skipQuoted(b, i)
			if out != nil {
				out = append(out, b[i:j]...)
			}
			i = j - 1
			continue
		case '#':
			if i == 0 || b[i-1] == ' ' || b[i-1] == '\t' || b[i-1] == '\n' {
				j := bytes.IndexByte(b[i:], '\n')
				if j < 0 {
					j = len(b) - i
				}
				if out != nil {
					out = append(out, b[i:i+j]...)
				}
				i += j - 1
				continue
			}
		case '{', '[':
			depth++
		case '}', ']':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth > 0 && i+1 < len(b) && !isBlank(b[i+1]) {
				if out == nil {
					out = make([]byte, 0, len(b)+16)
					out = append(out, b[:i]...)
				}
				out = append(out, ':', ' ')
				continue
			}
		}
		if out != nil {
			out = append(out, c)
		}
	}
	if out == nil {
		return b
	}
	return out
}

// skipQuoted returns the index just past the quoted scalar starting at i.
// Double quotes honour backslash escapes; single quotes use '' doubling.
func skipQuoted(b []byte, i int) int {
	q := b[i]
	for j := i + 1; j < len(b); j++ {
		switch {
		case q == '"' && b[j] == '\\':
			j++
		case b[j] == q:
			if q == '\'' && j+1 < len(b) && b[j+1] == '\'' {
				j++
				continue
			}
			return j + 1
		}
	}
	return len(b)
}

// startsScalar reports whether position i begins a new scalar, so apostrophes
// inside plain words are not taken as quotes.
func startsScalar(b []byte, i int) bool {
	if i == 0 {
		return true
	}
	switch p := b[i-1]; p {
	case '{', '[', ',', ':', '-', '?':
		return true
	default:
		return isBlank(p)
	}
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func (s *source) Location() int64 { return -1 }
