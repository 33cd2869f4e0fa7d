package influx

import (
	"bytes"
	"strings"
)

var (
	measurementReplacer *strings.Replacer
	keyReplacer         *strings.Replacer
	stringFieldReplacer *strings.Replacer
)

func init() {
	measurementReplacer = strings.NewReplacer(`,`, `\,`, ` `, `\ `)
	keyReplacer = strings.NewReplacer(`,`, `\,`, `=`, `\=`, ` `, `\ `)
	stringFieldReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
}

func EscapeMeasurement(s string) string {
	return measurementReplacer.Replace(s)
}

// EscapeKey escapes tag keys, tag values and field keys.
func EscapeKey(s string) string {
	return keyReplacer.Replace(s)
}

func QuoteString(s string) string {
	var buf bytes.Buffer

	buf.WriteByte('"')
	stringFieldReplacer.WriteString(&buf, s)
	buf.WriteByte('"')

	return buf.String()
}
