package rules

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sofmeright/buildcheck/src/check"
	"github.com/sofmeright/buildcheck/src/project"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

func init() {
	check.Register("unicode", func() check.Rule { return newUnicodeRule() })
}

// unicodeRule flags invisible and direction-changing characters that make
// source read differently from how it compiles.
type unicodeRule struct {
	detectBidi      bool
	detectZeroWidth bool
	detectControl   bool
	allowControl    map[rune]bool
	allowPaths      *project.Matcher
}

func newUnicodeRule() *unicodeRule {
	return &unicodeRule{detectBidi: true, detectZeroWidth: true, detectControl: true}
}

func (r *unicodeRule) ID() string          { return "unicode" }
func (r *unicodeRule) Description() string { return "bidi overrides, zero-width and control characters" }

func (r *unicodeRule) DefaultConfiguration() ruleconfig.DefaultConfiguration {
	return ruleconfig.Defaults(ruleconfig.SeverityWarning, ruleconfig.ScopeWorkTreeImports)
}

func (r *unicodeRule) Configure(custom ruleconfig.CustomConfigurationData) error {
	next := newUnicodeRule()
	for key, dst := range map[string]*bool{
		"detect_bidi":          &next.detectBidi,
		"detect_zero_width":    &next.detectZeroWidth,
		"detect_control_ascii": &next.detectControl,
	} {
		raw, ok := custom.Get(key)
		if !ok {
			continue
		}
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%s: %s must be true or false, got %q", r.ID(), key, raw)
		}
		*dst = v
	}

	for _, code := range listOption(custom, "allow_control_ascii", nil) {
		n, err := strconv.Atoi(code)
		if err != nil || n < 0 || n > 0x7f {
			return fmt.Errorf("%s: allow_control_ascii entry %q is not an ASCII code", r.ID(), code)
		}
		if n == '\t' || n == '\n' || n == '\r' {
			return fmt.Errorf("%s: allow_control_ascii entry %d is always allowed", r.ID(), n)
		}
		if next.allowControl == nil {
			next.allowControl = map[rune]bool{}
		}
		next.allowControl[rune(n)] = true
	}

	m, err := project.NewMatcher(listOption(custom, "allow_control_ascii_in_paths", nil))
	if err != nil {
		return fmt.Errorf("%s: allow_control_ascii_in_paths: %w", r.ID(), err)
	}
	next.allowPaths = m

	*r = *next
	return nil
}

func (r *unicodeRule) Check(ctx context.Context, file project.File) ([]check.Finding, error) {
	f, err := os.Open(file.AbsPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	controlAllowed := r.allowPaths.Match(file.Path)

	var findings []check.Finding
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if !utf8.Valid(text) {
			findings = append(findings, check.Finding{File: file.Path, Line: line, Message: "invalid UTF-8 encoding"})
			continue
		}

		col := 0
		for i := 0; i < len(text); {
			c, size := utf8.DecodeRune(text[i:])
			i += size
			col++

			msg, class := classifyRune(c)
			switch {
			case msg == "":
				continue
			case class == classBidi && !r.detectBidi:
				continue
			case class == classZeroWidth && !r.detectZeroWidth:
				continue
			case class == classControl && (!r.detectControl || controlAllowed || r.allowControl[c]):
				continue
			}
			findings = append(findings, check.Finding{
				File:    file.Path,
				Line:    line,
				Column:  col,
				Message: fmt.Sprintf("%s (U+%04X)", msg, c),
			})
		}
	}
	return findings, scanner.Err()
}

type runeClass int

const (
	classOther runeClass = iota
	classBidi
	classZeroWidth
	classControl
)

func classifyRune(c rune) (string, runeClass) {
	switch c {
	case '\u202A':
		return "bidi override: left-to-right embedding", classBidi
	case '\u202B':
		return "bidi override: right-to-left embedding", classBidi
	case '\u202C':
		return "bidi override: pop directional formatting", classBidi
	case '\u202D':
		return "bidi override: left-to-right override", classBidi
	case '\u202E':
		return "bidi override: right-to-left override", classBidi
	case '\u2066':
		return "bidi override: left-to-right isolate", classBidi
	case '\u2067':
		return "bidi override: right-to-left isolate", classBidi
	case '\u2068':
		return "bidi override: first strong isolate", classBidi
	case '\u2069':
		return "bidi override: pop directional isolate", classBidi

	case '\u200B':
		return "zero-width space", classZeroWidth
	case '\u200C':
		return "zero-width non-joiner", classZeroWidth
	case '\u200D':
		return "zero-width joiner", classZeroWidth
	case '\uFEFF':
		return "zero-width no-break space (unexpected BOM)", classZeroWidth

	case '\u00AD':
		return "soft hyphen (invisible)", classOther
	case '\u034F':
		return "combining grapheme joiner", classOther
	case '\u2060':
		return "word joiner (invisible)", classOther
	case '\u2061', '\u2062', '\u2063', '\u2064':
		return "invisible math operator", classOther
	case '\u180E':
		return "mongolian vowel separator (invisible whitespace)", classOther
	case '\u00A0':
		return "non-breaking space", classOther
	case '\u2000', '\u2001', '\u2002', '\u2003', '\u2004',
		'\u2005', '\u2006', '\u2007', '\u2008', '\u2009', '\u200A':
		return "unusual whitespace character", classOther
	case '\u205F':
		return "medium mathematical space", classOther
	case '\u3000':
		return "ideographic space", classOther
	}

	if c != '\t' && c != '\n' && c != '\r' && c < 0x80 && unicode.IsControl(c) {
		return "ASCII control character", classControl
	}
	if c >= 0xE0001 && c <= 0xE007F {
		return "tag character (invisible)", classOther
	}
	return "", classOther
}
