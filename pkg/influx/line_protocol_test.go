package influx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodePoints(t *testing.T) {
	assert := assert.New(t)

	settings := PointSettings{DefaultTags: Tags{"host": "h"}}

	tests := []struct {
		ps    Points
		lines string
		n     int
	}{
		{Points{},
			"", 0},
		{Points{
			NewPoint("m1").IntField("a", 1),
		},
			"m1,host=h a=1i\n", 1},
		{Points{
			NewPoint("m1").IntField("a", 1),
			NewPoint("m2").Tag("x", "foo").IntField("a", 1).BooleanField("b", false),
		},
			"m1,host=h a=1i\nm2,host=h,x=foo a=1i,b=F\n", 2},
		{Points{
			NewPoint("m1").IntField("a", 1),
			NewPoint("m2"),
			NewPoint("").IntField("a", 1),
			NewPoint("m3").StringField("a", "n").Timestamp(int64(42)),
		},
			"m1,host=h a=1i\nm3,host=h a=\"n\" 42\n", 2},
	}

	for i, test := range tests {
		var buf bytes.Buffer
		n := EncodePoints(test.ps, &settings, &buf)
		assert.Equal(test.lines, buf.String(), i+1)
		assert.Equal(test.n, n, i+1)

		lines := EncodeLines(test.ps, &settings)
		assert.Len(lines, test.n, i+1)
	}
}
