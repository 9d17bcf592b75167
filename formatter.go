// formatter.go: Built-in formatters and the formatter builder
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hermes

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Formatter turns one decoded record into a final, newline-terminated
// log line. args holds every decoded argument in order: format-string
// arguments first, structured field arguments last.
type Formatter interface {
	Format(ts time.Time, md *Metadata, args []string) string
}

// ANSI SGR fragments used for optional styling.
const (
	ansiReset = "\x1b[0m"
	ansiDim   = "\x1b[2m"
)

func ansiLevelColor(l Level) string {
	switch l {
	case LevelTrace:
		return "\x1b[35m"
	case LevelDebug:
		return "\x1b[34m"
	case LevelInfo:
		return "\x1b[32m"
	case LevelWarn:
		return "\x1b[33m"
	case LevelError:
		return "\x1b[31m"
	case LevelEvent:
		return "\x1b[36m"
	}
	return ""
}

// timestampSpec controls timestamp rendering. An empty layout renders
// seconds since the Unix epoch; otherwise the Go reference layout is
// applied in UTC, or local time when local is set.
type timestampSpec struct {
	show   bool
	layout string
	local  bool
}

func (t timestampSpec) render(ts time.Time) string {
	if t.layout == "" {
		return strconv.FormatInt(ts.Unix(), 10)
	}
	if t.local {
		return ts.Local().Format(t.layout)
	}
	return ts.UTC().Format(t.layout)
}

// DefaultFormatter renders `[TIMESTAMP][LEVEL] message k1=v1 k2=v2`.
// Construct via NewFormatter.
type DefaultFormatter struct {
	target bool
	file   bool
	line   bool
	level  bool
	ts     timestampSpec
	ansi   bool
	pat    *pattern
}

// Format implements Formatter.
func (f *DefaultFormatter) Format(ts time.Time, md *Metadata, args []string) string {
	if f.pat != nil {
		return f.pat.render(f, ts, md, args)
	}

	var b strings.Builder
	if f.ts.show {
		f.writeBracketed(&b, f.ts.render(ts), f.ansi)
	}
	if f.level {
		f.writeLevelBracketed(&b, md.Level)
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}

	located := false
	if f.file {
		b.WriteString(md.File)
		b.WriteByte(':')
		located = true
	}
	if f.target {
		b.WriteString(md.Target)
		b.WriteByte(':')
		located = true
	}
	if f.line {
		b.WriteString(strconv.FormatUint(uint64(md.Line), 10))
		b.WriteByte(':')
		located = true
	}
	if located {
		b.WriteByte(' ')
	}

	b.WriteString(interpolate(fullFormatString(md), args))
	b.WriteByte('\n')
	return b.String()
}

func (f *DefaultFormatter) writeBracketed(b *strings.Builder, s string, dim bool) {
	if dim {
		b.WriteString(ansiDim)
		b.WriteByte('[')
		b.WriteString(s)
		b.WriteByte(']')
		b.WriteString(ansiReset)
		return
	}
	b.WriteByte('[')
	b.WriteString(s)
	b.WriteByte(']')
}

func (f *DefaultFormatter) writeLevelBracketed(b *strings.Builder, l Level) {
	b.WriteByte('[')
	if f.ansi {
		b.WriteString(ansiLevelColor(l))
		b.WriteString(l.String())
		b.WriteString(ansiReset)
	} else {
		b.WriteString(l.String())
	}
	b.WriteByte(']')
}

// JSONFormatter renders
// `{"timestamp":"…","level":"…","fields":{"message":"…","k":"v"}}`.
// The fields object is always emitted; message is elided iff the
// callsite has no format string.
type JSONFormatter struct {
	target bool
	file   bool
	line   bool
	level  bool
	ts     timestampSpec
}

// eventFormatter formats event-level records regardless of the
// configured formatter.
var eventFormatter = &JSONFormatter{
	level: true,
	ts:    timestampSpec{show: true},
}

// Format implements Formatter.
func (f *JSONFormatter) Format(ts time.Time, md *Metadata, args []string) string {
	var b strings.Builder
	b.WriteByte('{')

	wrote := false
	if f.ts.show {
		b.WriteString(`"timestamp":`)
		b.WriteString(strconv.Quote(f.ts.render(ts)))
		wrote = true
	}
	if f.level {
		if wrote {
			b.WriteByte(',')
		}
		b.WriteString(`"level":`)
		b.WriteString(strconv.Quote(md.Level.String()))
		wrote = true
	}
	if f.file {
		if wrote {
			b.WriteByte(',')
		}
		b.WriteString(`"filename":`)
		b.WriteString(strconv.Quote(md.File))
		wrote = true
	}
	if f.target {
		if wrote {
			b.WriteByte(',')
		}
		b.WriteString(`"target":`)
		b.WriteString(strconv.Quote(md.Target))
		wrote = true
	}
	if f.line {
		if wrote {
			b.WriteByte(',')
		}
		b.WriteString(`"line":`)
		b.WriteString(strconv.Quote(strconv.FormatUint(uint64(md.Line), 10)))
		wrote = true
	}

	if wrote {
		b.WriteByte(',')
	}
	b.WriteString(`"fields":{`)

	fmtArgs, fieldArgs := splitArgs(md, args)
	hasMessage := md.Format != ""
	if hasMessage {
		b.WriteString(`"message":`)
		b.WriteString(strconv.Quote(interpolate(md.Format, fmtArgs)))
	}
	for i, name := range md.Fields {
		if hasMessage || i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(name))
		b.WriteByte(':')
		if i < len(fieldArgs) {
			b.WriteString(strconv.Quote(fieldArgs[i]))
		} else {
			b.WriteString(`""`)
		}
	}

	b.WriteString("}}\n")
	return b.String()
}

// FormatterBuilder configures the built-in formatters.
//
//	f, err := hermes.NewFormatter().
//		WithTimeLayout(time.RFC3339Nano).
//		WithTarget(true).
//		Build()
type FormatterBuilder struct {
	target  bool
	file    bool
	line    bool
	level   bool
	ts      timestampSpec
	ansi    bool
	json    bool
	pattern string
	hasPat  bool
}

// NewFormatter returns a builder with the defaults: level and timestamp
// shown, timestamp as seconds since the Unix epoch in UTC, no ANSI.
func NewFormatter() *FormatterBuilder {
	return &FormatterBuilder{
		level: true,
		ts:    timestampSpec{show: true},
	}
}

// WithTarget toggles printing of the module path.
func (b *FormatterBuilder) WithTarget(target bool) *FormatterBuilder {
	b.target = target
	return b
}

// WithFilename toggles printing of the source filename.
func (b *FormatterBuilder) WithFilename(file bool) *FormatterBuilder {
	b.file = file
	return b
}

// WithLine toggles printing of the source line number.
func (b *FormatterBuilder) WithLine(line bool) *FormatterBuilder {
	b.line = line
	return b
}

// WithLevel toggles printing of the log level.
func (b *FormatterBuilder) WithLevel(level bool) *FormatterBuilder {
	b.level = level
	return b
}

// WithTimeLayout sets the timestamp layout (Go reference layout). An
// empty layout renders seconds since the Unix epoch.
func (b *FormatterBuilder) WithTimeLayout(layout string) *FormatterBuilder {
	b.ts.show = true
	b.ts.layout = layout
	return b
}

// WithTimeLocal renders timestamps in local time instead of UTC.
func (b *FormatterBuilder) WithTimeLocal() *FormatterBuilder {
	b.ts.show = true
	b.ts.local = true
	return b
}

// WithTimeUTC renders timestamps in UTC (the default).
func (b *FormatterBuilder) WithTimeUTC() *FormatterBuilder {
	b.ts.show = true
	b.ts.local = false
	return b
}

// WithoutTime disables the timestamp.
func (b *FormatterBuilder) WithoutTime() *FormatterBuilder {
	b.ts.show = false
	return b
}

// WithANSI toggles ANSI styling of the timestamp and level.
func (b *FormatterBuilder) WithANSI(ansi bool) *FormatterBuilder {
	b.ansi = ansi
	return b
}

// WithPattern overrides the default layout with a pattern string using
// %(time), %(target), %(filename), %(line), %(level) and %(message)
// tokens, each permitted at most once. Literal braces must be escaped
// as {{ and }}.
func (b *FormatterBuilder) WithPattern(pattern string) *FormatterBuilder {
	b.pattern = pattern
	b.hasPat = true
	return b
}

// JSON switches the builder to produce a JSONFormatter.
func (b *FormatterBuilder) JSON() *FormatterBuilder {
	b.json = true
	return b
}

// Build completes the configuration. An invalid pattern is rejected
// here.
func (b *FormatterBuilder) Build() (Formatter, error) {
	if b.json {
		return &JSONFormatter{
			target: b.target,
			file:   b.file,
			line:   b.line,
			level:  b.level,
			ts:     b.ts,
		}, nil
	}

	f := &DefaultFormatter{
		target: b.target,
		file:   b.file,
		line:   b.line,
		level:  b.level,
		ts:     b.ts,
		ansi:   b.ansi,
	}
	if b.hasPat {
		pat, err := parsePattern(b.pattern)
		if err != nil {
			return nil, err
		}
		f.pat = pat
	}
	return f, nil
}

// Pattern support.

type patternToken uint8

const (
	tokLiteral patternToken = iota
	tokTime
	tokTarget
	tokFilename
	tokLine
	tokLevel
	tokMessage
)

type patternSeg struct {
	token patternToken
	lit   string
}

type pattern struct {
	segs []patternSeg
}

func patternTokenOf(ident string) (patternToken, bool) {
	switch ident {
	case "time":
		return tokTime, true
	case "target":
		return tokTarget, true
	case "filename":
		return tokFilename, true
	case "line":
		return tokLine, true
	case "level":
		return tokLevel, true
	case "message":
		return tokMessage, true
	}
	return tokLiteral, false
}

// parsePattern validates and compiles a pattern string. Each token may
// appear at most once; unescaped braces are rejected.
func parsePattern(s string) (*pattern, error) {
	var segs []patternSeg
	var lit strings.Builder
	seen := make(map[patternToken]bool)

	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, patternSeg{token: tokLiteral, lit: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			lit.WriteByte('{')
			i++
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			lit.WriteByte('}')
			i++
		case c == '{' || c == '}':
			return nil, fmt.Errorf("%w: unescaped %q, use %q", ErrPattern, string(c), strings.Repeat(string(c), 2))
		case c == '%' && i+1 < len(s) && s[i+1] == '(':
			end := strings.IndexByte(s[i+2:], ')')
			if end < 0 {
				return nil, fmt.Errorf("%w: no matching closing delimiter", ErrPattern)
			}
			ident := s[i+2 : i+2+end]
			tok, ok := patternTokenOf(ident)
			if !ok {
				return nil, fmt.Errorf("%w: unknown identifier %q", ErrPattern, ident)
			}
			if seen[tok] {
				return nil, fmt.Errorf("%w: identifier %q used more than once", ErrPattern, ident)
			}
			seen[tok] = true
			flush()
			segs = append(segs, patternSeg{token: tok})
			i += 2 + end
		default:
			lit.WriteByte(c)
		}
	}
	flush()

	return &pattern{segs: segs}, nil
}

func (p *pattern) render(f *DefaultFormatter, ts time.Time, md *Metadata, args []string) string {
	var b strings.Builder
	for _, seg := range p.segs {
		switch seg.token {
		case tokLiteral:
			b.WriteString(seg.lit)
		case tokTime:
			b.WriteString(f.ts.render(ts))
		case tokTarget:
			b.WriteString(md.Target)
		case tokFilename:
			b.WriteString(md.File)
		case tokLine:
			b.WriteString(strconv.FormatUint(uint64(md.Line), 10))
		case tokLevel:
			b.WriteString(md.Level.String())
		case tokMessage:
			b.WriteString(interpolate(fullFormatString(md), args))
		}
	}
	b.WriteByte('\n')
	return b.String()
}
