// formatter_test.go: Formatter and interpolation tests
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hermes

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var formatterTS = time.Unix(1706065336, 0).UTC()

func TestInterpolate(t *testing.T) {
	tests := []struct {
		format string
		args   []string
		want   string
	}{
		{"values: {}, {}, {}", []string{"-1", "3.14", "hello"}, "values: -1, 3.14, hello"},
		{"no args", nil, "no args"},
		{"esc {{}} here", []string{"x"}, "esc {} here"},
		{"{{literal}}", nil, "{literal}"},
		{"{} and {}", []string{"a"}, "a and "},
		{"{}", []string{"a", "b"}, "a"},
		{"", nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, interpolate(tt.format, tt.args), "format %q", tt.format)
	}
}

func TestFullFormatString(t *testing.T) {
	md := &Metadata{Format: "msg", Fields: []string{"a", "b"}}
	assert.Equal(t, "msg a={} b={}", fullFormatString(md))

	md = &Metadata{Format: "", Fields: []string{"a"}}
	assert.Equal(t, "a={}", fullFormatString(md))

	md = &Metadata{Format: "msg"}
	assert.Equal(t, "msg", fullFormatString(md))
}

func TestDefaultFormatter(t *testing.T) {
	f, err := NewFormatter().Build()
	require.NoError(t, err)

	md := &Metadata{Level: LevelInfo, Format: "hello"}
	assert.Equal(t, "[1706065336][INF] hello\n", f.Format(formatterTS, md, nil))
}

func TestDefaultFormatterFields(t *testing.T) {
	f, err := NewFormatter().Build()
	require.NoError(t, err)

	md := &Metadata{Level: LevelWarn, Format: "order filled", Fields: []string{"price", "qty"}}
	line := f.Format(formatterTS, md, []string{"99.5", "300"})
	assert.Equal(t, "[1706065336][WRN] order filled price=99.5 qty=300\n", line)
}

func TestDefaultFormatterLocation(t *testing.T) {
	f, err := NewFormatter().
		WithFilename(true).
		WithTarget(true).
		WithLine(true).
		Build()
	require.NoError(t, err)

	md := &Metadata{Level: LevelInfo, Target: "engine", File: "main.go", Line: 42, Format: "hi"}
	assert.Equal(t, "[1706065336][INF] main.go:engine:42: hi\n", f.Format(formatterTS, md, nil))
}

func TestDefaultFormatterTimeLayout(t *testing.T) {
	f, err := NewFormatter().WithTimeLayout("2006-01-02").Build()
	require.NoError(t, err)

	md := &Metadata{Level: LevelInfo, Format: "x"}
	line := f.Format(formatterTS, md, nil)
	assert.Equal(t, "["+formatterTS.Format("2006-01-02")+"][INF] x\n", line)
}

func TestDefaultFormatterWithoutTimeAndLevel(t *testing.T) {
	f, err := NewFormatter().WithoutTime().WithLevel(false).Build()
	require.NoError(t, err)

	md := &Metadata{Level: LevelInfo, Format: "bare"}
	assert.Equal(t, "bare\n", f.Format(formatterTS, md, nil))
}

func TestDefaultFormatterANSI(t *testing.T) {
	f, err := NewFormatter().WithANSI(true).Build()
	require.NoError(t, err)

	md := &Metadata{Level: LevelInfo, Format: "x"}
	line := f.Format(formatterTS, md, nil)
	assert.Contains(t, line, ansiDim)
	assert.Contains(t, line, "\x1b[32mINF")
	assert.True(t, strings.HasSuffix(line, "x\n"))
}

func TestPatternFormatter(t *testing.T) {
	f, err := NewFormatter().
		WithPattern("[%(time)] %(filename):%(line) %(level) %(message)").
		Build()
	require.NoError(t, err)

	md := &Metadata{Level: LevelInfo, File: "main.go", Line: 7, Format: "hello"}
	assert.Equal(t, "[1706065336] main.go:7 INF hello\n", f.Format(formatterTS, md, nil))
}

func TestPatternFormatterTargetAndEscapes(t *testing.T) {
	f, err := NewFormatter().WithPattern("{{%(target)}} %(message)").Build()
	require.NoError(t, err)

	md := &Metadata{Level: LevelInfo, Target: "engine", Format: "hi"}
	assert.Equal(t, "{engine} hi\n", f.Format(formatterTS, md, nil))
}

func TestPatternErrors(t *testing.T) {
	tests := []string{
		"%(time) %(time)",    // repeated identifier
		"%(bogus)",           // unknown identifier
		"%(time",             // missing delimiter
		"left { right",       // unescaped brace
		"left } right",       // unescaped brace
	}
	for _, pattern := range tests {
		_, err := NewFormatter().WithPattern(pattern).Build()
		require.ErrorIs(t, err, ErrPattern, "pattern %q", pattern)
	}
}

func TestJSONFormatter(t *testing.T) {
	f, err := NewFormatter().JSON().Build()
	require.NoError(t, err)

	md := &Metadata{Level: LevelInfo, Format: "hello", Fields: []string{"a"}}
	line := f.Format(formatterTS, md, []string{"1"})
	assert.Equal(t, `{"timestamp":"1706065336","level":"INF","fields":{"message":"hello","a":"1"}}`+"\n", line)
}

func TestJSONFormatterNoMessage(t *testing.T) {
	f, err := NewFormatter().JSON().Build()
	require.NoError(t, err)

	// message is elided iff the callsite has no format string
	md := &Metadata{Level: LevelEvent, Format: "", Fields: []string{"a"}}
	line := f.Format(formatterTS, md, []string{"1"})
	assert.Equal(t, `{"timestamp":"1706065336","level":"EVT","fields":{"a":"1"}}`+"\n", line)
}

func TestJSONFormatterEmptyFields(t *testing.T) {
	f, err := NewFormatter().JSON().Build()
	require.NoError(t, err)

	md := &Metadata{Level: LevelInfo, Format: "only message"}
	line := f.Format(formatterTS, md, nil)
	assert.Equal(t, `{"timestamp":"1706065336","level":"INF","fields":{"message":"only message"}}`+"\n", line)
}

func TestJSONFormatterEscaping(t *testing.T) {
	f, err := NewFormatter().JSON().Build()
	require.NoError(t, err)

	md := &Metadata{Level: LevelInfo, Format: `say "{}"`}
	line := f.Format(formatterTS, md, []string{"hi"})
	assert.Contains(t, line, `"message":"say \"hi\""`)
}
