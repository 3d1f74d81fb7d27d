package isodate

import (
	"errors"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"2015-06-01T12:30:45.123Z", 1433161845123},
		{"2015-06-01T12:30:45Z", 1433161845000},
		{"2015-06-01T12:30Z", 1433161800000},
		{"2015-06-01T12:30:45.1Z", 1433161845100},
		{"2015-06-01T12:30:45.12Z", 1433161845120},
		{"2015-06-01T12:30:45+02:30", 1433161845000 - 150*60*1000},
		{"2015-06-01T12:30:45+0230", 1433161845000 - 150*60*1000},
		{"2015-06-01T12:30:45-0100", 1433161845000 + 60*60*1000},
		{"2015-06-01T12:30-0030", 1433161800000 + 30*60*1000},
		{"2015-06-01T12:30:45.999+0000", 1433161845999},
		{"1970-01-01T00:00:00Z", 0},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := Parse(test.input)
			assert.NilError(t, err)
			assert.Equal(t, got, test.want)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
		token string
	}{
		{"2015-06-01T12:30:45", "missing required time zone", ""},
		{"2015-06-01T12:30:45.123", "missing required time zone", ""},
		{"15-06-01T12:30:45Z", "year string should be four digits", "15"},
		{"1969-06-01T12:30:45Z", "year out of range: 1969", "1969"},
		{"2015-13-01T12:30:45Z", "month out of range: 13", "13"},
		{"2015-06-32T12:30:45Z", "day out of range: 32", "32"},
		{"2015-06-01T24:30:45Z", "hour out of range: 24", "24"},
		{"2015-06-01T12:60:45Z", "minute out of range: 60", "60"},
		{"2015-06-01T12:30:60Z", "second out of range: 60", "60"},
		{"2015-06-01T12:30:4Z", "second string should be two digits", "4"},
		{"2015-06-01T12:30:45.1234Z", "at most three digits", "1234"},
		{"2015-06-01T12:30:45.12aZ", "at most three digits", "12a"},
		{"2015-06-01T12:30:", `ends with ":"`, ":"},
		{"2015-06-01T12:30:45.", `ends with "."`, "."},
		{"2015-06-01T12:30:45ZZ", "trailing characters", "ZZ"},
		{"2015-06-01T12:30:45+2400", "hours adjustment out of range", "+2400"},
		{"2015-06-01T12:30:45+0260", "minutes adjustment out of range", "+0260"},
		{"2015-06-01T12:30:45+02", "should be four digits", "+02"},
		{"2015/06/01T12:30:45Z", "year string should be four digits", "2015/06/01T12:30:45Z"},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			_, err := Parse(test.input)
			assert.ErrorContains(t, err, test.msg)
			var pe *ParseError
			assert.Assert(t, errors.As(err, &pe))
			assert.Equal(t, pe.Input, test.input)
			assert.Equal(t, pe.Token, test.token)
		})
	}
}

func TestParseTimeAndFormat(t *testing.T) {
	tm, err := ParseTime("2015-06-01T12:30:45.123Z")
	assert.NilError(t, err)
	assert.Assert(t, tm.Equal(time.Date(2015, 6, 1, 12, 30, 45, 123_000_000, time.UTC)))
	assert.Equal(t, tm.Location(), time.UTC)

	s := Format(1433161845123)
	assert.Equal(t, s, "2015-06-01T12:30:45.123Z")

	back, err := Parse(s)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(back, int64(1433161845123)))

	_, err = ParseTime("nope")
	assert.Assert(t, err != nil)
}
