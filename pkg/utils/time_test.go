package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSeconds(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("1µs", FormatSeconds(0.0000005, 1))
	assert.Equal("500ms", FormatSeconds(0.5, 1))
	assert.Equal("250ms", FormatSeconds(0.25, 1))
	assert.Equal("1.5s", FormatSeconds(1.5, 1))
	assert.Equal("2.25s", FormatSeconds(2.25, 2))
}
