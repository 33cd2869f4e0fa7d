package influx

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

type Precision string

const (
	PrecisionNanosecond  Precision = "ns"
	PrecisionMicrosecond Precision = "us"
	PrecisionMillisecond Precision = "ms"
	PrecisionSecond      Precision = "s"
)

var Precisions = []Precision{
	PrecisionNanosecond,
	PrecisionMicrosecond,
	PrecisionMillisecond,
	PrecisionSecond,
}

func (p Precision) Valid() bool {
	for _, p2 := range Precisions {
		if p == p2 {
			return true
		}
	}

	return false
}

// TimeConverter turns the raw timestamp stored in a point into its textual
// representation. The boolean is false when the line must not carry a
// timestamp.
type TimeConverter func(interface{}) (string, bool)

// NewTimeConverter returns a converter producing timestamps in the unit of
// the precision. Points without timestamp receive the current time obtained
// from clock; an empty string lets the server assign the timestamp.
func NewTimeConverter(precision Precision, clock func() time.Time) TimeConverter {
	if clock == nil {
		clock = time.Now
	}

	return func(value interface{}) (string, bool) {
		switch v := value.(type) {
		case nil:
			return FormatTime(clock(), precision), true
		case time.Time:
			return FormatTime(v, precision), true
		case *time.Time:
			if v == nil {
				return FormatTime(clock(), precision), true
			}
			return FormatTime(*v, precision), true
		case string:
			return v, v != ""
		case float32:
			return strconv.FormatFloat(math.Floor(float64(v)), 'f', -1, 64), true
		case float64:
			return strconv.FormatFloat(math.Floor(v), 'f', -1, 64), true
		default:
			return formatRawTime(v)
		}
	}
}

func FormatTime(t time.Time, precision Precision) string {
	var n int64

	switch precision {
	case PrecisionSecond:
		n = t.Unix()
	case PrecisionMillisecond:
		n = t.UnixMilli()
	case PrecisionMicrosecond:
		n = t.UnixMicro()
	default:
		n = t.UnixNano()
	}

	return strconv.FormatInt(n, 10)
}

func formatRawTime(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case time.Time:
		return strconv.FormatInt(v.UnixNano(), 10), true
	case *time.Time:
		if v == nil {
			return "", false
		}
		return strconv.FormatInt(v.UnixNano(), 10), true
	case int:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 64), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return fmt.Sprint(v), true
	}
}
