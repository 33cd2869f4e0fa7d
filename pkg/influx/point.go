package influx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

type Tags map[string]string

type Fields map[string]interface{}

// Point is a single measurement sample. Setters return the point itself so
// that calls can be chained. A point is not safe for concurrent use.
type Point struct {
	name   string
	tags   map[string]string
	fields map[string]string // encoded values
	time   interface{}
}

type Points []*Point

// PointSettings control how a point is rendered to a protocol line.
type PointSettings struct {
	DefaultTags Tags
	ConvertTime TimeConverter
}

func NewPoint(measurement string) *Point {
	return &Point{
		name:   measurement,
		tags:   make(map[string]string),
		fields: make(map[string]string),
	}
}

func NewPointWithFields(measurement string, tags Tags, fields Fields) *Point {
	p := NewPoint(measurement)

	for name, value := range tags {
		p.Tag(name, value)
	}

	for name, value := range fields {
		p.Field(name, value)
	}

	return p
}

func (p *Point) Measurement(name string) *Point {
	p.name = name
	return p
}

func (p *Point) Tag(name, value string) *Point {
	p.tags[name] = value
	return p
}

func (p *Point) BooleanField(name string, value bool) *Point {
	if value {
		p.fields[name] = "T"
	} else {
		p.fields[name] = "F"
	}

	return p
}

func (p *Point) IntField(name string, value int64) *Point {
	p.fields[name] = strconv.FormatInt(value, 10) + "i"
	return p
}

// IntFieldFromFloat stores the floor of value as an integer field.
func (p *Point) IntFieldFromFloat(name string, value float64) *Point {
	return p.IntField(name, int64(math.Floor(value)))
}

func (p *Point) UintField(name string, value uint64) *Point {
	p.fields[name] = strconv.FormatUint(value, 10) + "i"
	return p
}

// ParseIntField parses the longest base 10 integer prefix of value. The
// point is left untouched if there is no such prefix.
func (p *Point) ParseIntField(name, value string) (*Point, error) {
	i, err := parseIntPrefix(value)
	if err != nil {
		return p, &FormatError{Field: name, Kind: "integer", Value: value}
	}

	return p.IntField(name, i), nil
}

// FloatField stores value as a float field. Non-finite values are rendered as
// NaN, +Inf or -Inf, which the server rejects.
func (p *Point) FloatField(name string, value float64) *Point {
	p.fields[name] = strconv.FormatFloat(value, 'f', -1, 64)
	return p
}

// ParseFloatField parses the longest floating point number prefix of value.
// The point is left untouched if there is no such prefix.
func (p *Point) ParseFloatField(name, value string) (*Point, error) {
	f, err := parseFloatPrefix(value)
	if err != nil {
		return p, &FormatError{Field: name, Kind: "float", Value: value}
	}

	return p.FloatField(name, f), nil
}

func (p *Point) StringField(name, value string) *Point {
	p.fields[name] = QuoteString(value)
	return p
}

func (p *Point) NullableStringField(name string, value *string) *Point {
	if value == nil {
		return p
	}

	return p.StringField(name, *value)
}

// Field stores a value according to its Go type. Nil values are ignored.
func (p *Point) Field(name string, value interface{}) *Point {
	switch v := value.(type) {
	case nil:
		return p
	case bool:
		return p.BooleanField(name, v)
	case int:
		return p.IntField(name, int64(v))
	case int8:
		return p.IntField(name, int64(v))
	case int16:
		return p.IntField(name, int64(v))
	case int32:
		return p.IntField(name, int64(v))
	case int64:
		return p.IntField(name, v)
	case uint:
		return p.UintField(name, uint64(v))
	case uint8:
		return p.UintField(name, uint64(v))
	case uint16:
		return p.UintField(name, uint64(v))
	case uint32:
		return p.UintField(name, uint64(v))
	case uint64:
		return p.UintField(name, v)
	case float32:
		return p.FloatField(name, float64(v))
	case float64:
		return p.FloatField(name, v)
	case string:
		return p.StringField(name, v)
	case *string:
		return p.NullableStringField(name, v)
	case []byte:
		return p.StringField(name, string(v))
	case fmt.Stringer:
		return p.StringField(name, v.String())
	default:
		return p.StringField(name, fmt.Sprintf("%v", v))
	}
}

// Timestamp stores the raw time value of the point. Its interpretation is
// left to the TimeConverter used when rendering.
func (p *Point) Timestamp(value interface{}) *Point {
	p.time = value
	return p
}

func (p *Point) Name() string {
	return p.name
}

func (p *Point) HasField(name string) bool {
	_, found := p.fields[name]
	return found
}

// EncodedFields returns a copy of the escaped field values.
func (p *Point) EncodedFields() map[string]string {
	fields := make(map[string]string, len(p.fields))
	for name, value := range p.fields {
		fields[name] = value
	}

	return fields
}

// LineProtocol renders the point. The boolean is false when the point has no
// measurement name or no field, in which case nothing must be sent.
func (p *Point) LineProtocol(settings *PointSettings) (string, bool) {
	if p.name == "" {
		return "", false
	}

	var fieldsBuf bytes.Buffer
	encodeFields(p.fields, &fieldsBuf)
	if fieldsBuf.Len() == 0 {
		return "", false
	}

	tags := p.tags
	if settings != nil && len(settings.DefaultTags) > 0 {
		tags = make(map[string]string, len(settings.DefaultTags)+len(p.tags))
		for key, value := range settings.DefaultTags {
			tags[key] = value
		}
		for key, value := range p.tags {
			tags[key] = value
		}
	}

	var timestamp string
	var hasTimestamp bool
	if settings != nil && settings.ConvertTime != nil {
		timestamp, hasTimestamp = settings.ConvertTime(p.time)
	} else {
		timestamp, hasTimestamp = formatRawTime(p.time)
	}

	var buf bytes.Buffer

	measurementReplacer.WriteString(&buf, p.name)
	encodeTags(tags, &buf)
	buf.WriteByte(' ')
	buf.Write(fieldsBuf.Bytes())

	if hasTimestamp {
		buf.WriteByte(' ')
		buf.WriteString(timestamp)
	}

	return buf.String(), true
}

// String renders the point without settings. Points which cannot be rendered
// are dumped for debugging purposes; the result must not be sent.
func (p *Point) String() string {
	if line, ok := p.LineProtocol(nil); ok {
		return line
	}

	dump := struct {
		Name   string            `json:"name,omitempty"`
		Tags   map[string]string `json:"tags"`
		Fields map[string]string `json:"fields"`
		Time   interface{}       `json:"time,omitempty"`
	}{
		Name:   p.name,
		Tags:   p.tags,
		Fields: p.fields,
		Time:   p.time,
	}

	data, err := json.Marshal(dump)
	if err != nil {
		return fmt.Sprintf("invalid point: %#v", dump)
	}

	return "invalid point: " + string(data)
}

func encodeTags(tags map[string]string, buf *bytes.Buffer) {
	// From the InfluxDB documentation:
	//
	// For best performance you should sort tags by key before sending them to
	// the database. The sort should match the results from the Go
	// bytes.Compare function.

	keys := make([]string, 0, len(tags))

	for key, value := range tags {
		// "Tag values cannot be empty; instead, omit the tag from the tag set"
		if key != "" && value != "" {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	for _, key := range keys {
		buf.WriteByte(',')
		keyReplacer.WriteString(buf, key)
		buf.WriteByte('=')
		keyReplacer.WriteString(buf, tags[key])
	}
}

func encodeFields(fields map[string]string, buf *bytes.Buffer) {
	// While not required, we sort fields so that lines are deterministic.

	keys := make([]string, 0, len(fields))
	for key := range fields {
		if key != "" {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyReplacer.WriteString(buf, key)
		buf.WriteByte('=')
		buf.WriteString(fields[key])
	}
}

// Truthy reports whether a loosely typed value counts as true for a boolean
// field: nil, false, zero numbers, NaN and the empty string are false.
func Truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case int:
		return v != 0
	case int8:
		return v != 0
	case int16:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case uint:
		return v != 0
	case uint8:
		return v != 0
	case uint16:
		return v != 0
	case uint32:
		return v != 0
	case uint64:
		return v != 0
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	default:
		return true
	}
}
