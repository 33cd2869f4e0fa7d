package influx

import "bytes"

// EncodeLines renders points to protocol lines. Points which cannot be
// rendered are skipped.
func EncodeLines(points Points, settings *PointSettings) []string {
	lines := make([]string, 0, len(points))

	for _, p := range points {
		if line, ok := p.LineProtocol(settings); ok {
			lines = append(lines, line)
		}
	}

	return lines
}

// EncodePoints writes one newline terminated line per point which can be
// rendered and returns the number of lines written.
func EncodePoints(points Points, settings *PointSettings, buf *bytes.Buffer) int {
	n := 0

	for _, p := range points {
		line, ok := p.LineProtocol(settings)
		if !ok {
			continue
		}

		buf.WriteString(line)
		buf.WriteByte('\n')

		n++
	}

	return n
}

func encodeLines(lines []string, buf *bytes.Buffer) {
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
}
