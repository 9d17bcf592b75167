// fmtstring.go: Message format string interpolation
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hermes

import (
	"strings"
)

// interpolate substitutes args into the `{}` markers of format. Literal
// braces are escaped as `{{` and `}}`. Surplus markers render empty;
// surplus arguments are ignored.
func interpolate(format string, args []string) string {
	if !strings.ContainsRune(format, '{') && !strings.ContainsRune(format, '}') {
		return format
	}

	var b strings.Builder
	b.Grow(len(format) + 16*len(args))

	next := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		switch {
		case c == '{' && i+1 < len(format) && format[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(format) && format[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{' && i+1 < len(format) && format[i+1] == '}':
			if next < len(args) {
				b.WriteString(args[next])
				next++
			}
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// fullFormatString appends the structured field markers to the message
// format string: `msg f1={} f2={}`.
func fullFormatString(md *Metadata) string {
	if len(md.Fields) == 0 {
		return md.Format
	}

	var b strings.Builder
	b.WriteString(md.Format)
	for i, f := range md.Fields {
		if b.Len() > 0 || i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f)
		b.WriteString("={}")
	}
	return b.String()
}

// splitArgs separates format-string arguments from structured field
// arguments; field arguments are always the trailing ones.
func splitArgs(md *Metadata, args []string) (fmtArgs, fieldArgs []string) {
	n := len(md.Fields)
	if n > len(args) {
		n = len(args)
	}
	return args[:len(args)-n], args[len(args)-n:]
}
