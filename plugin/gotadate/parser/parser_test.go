package parser

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1988-10-20 is a Thursday.
var reference = time.Date(1988, 10, 20, 15, 0, 0, 0, time.UTC)

func parseAt(t *testing.T, input string) []time.Time {
	t.Helper()
	got, err := Parse(input, WithReference(reference), WithLocation(time.UTC))
	require.NoError(t, err)
	return got
}

func formatAll(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, v := range ts {
		out[i] = v.Format("2006-01-02 15:04:05")
	}
	return out
}

func TestParser_Dates(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"simple date", "23/10/1988", []string{"1988-10-23 00:00:00"}},
		{"text before", "abc def 23/10/1988", []string{"1988-10-23 00:00:00"}},
		{"text after", "23/10/1988 abc def", []string{"1988-10-23 00:00:00"}},
		{"text before and after", "abc 23/10/1988 def", []string{"1988-10-23 00:00:00"}},
		{"obvious MM/DD/YYYY", "10/23/1988", []string{"1988-10-23 00:00:00"}},
		{"ambiguous stays DD/MM", "05/06/2001", []string{"2001-06-05 00:00:00"}},
		{"zero year defaults", "23/10/0", []string{"1988-10-23 00:00:00"}},
		{"day and month name", "23 October", []string{"1988-10-23 00:00:00"}},
		{"ordinal suffix", "23rd October", []string{"1988-10-23 00:00:00"}},
		{"ordinal with year", "1st Jan 2000", []string{"2000-01-01 00:00:00"}},
		{"abbreviation", "4 sept 2015", []string{"2015-09-04 00:00:00"}},
		{"upper case month", "4 SEPTEMBER 2015", []string{"2015-09-04 00:00:00"}},
		{"month first", "October 23, 1990", []string{"1990-10-23 00:00:00"}},
		{"month first ordinal", "Oct 23rd 1990", []string{"1990-10-23 00:00:00"}},
		{"month first no year", "on march 3 we met", []string{"1988-03-03 00:00:00"}},
		{"two dates", "from 23/10/1988 to 24/10/1988", []string{"1988-10-23 00:00:00", "1988-10-24 00:00:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAll(parseAt(t, tt.input)))
		})
	}
}

func TestParser_SwapMatchesCanonical(t *testing.T) {
	assert.Equal(t, parseAt(t, "23/10/1988"), parseAt(t, "10/23/1988"))
	assert.Equal(t, parseAt(t, "23 October"), parseAt(t, "23rd October"))
}

func TestParser_RelativeDates(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"yesterday", "1988-10-19 00:00:00"},
		{"tomorrow", "1988-10-21 00:00:00"},
		{"Yesterday", "1988-10-19 00:00:00"},
		{"YESTERDAY", "1988-10-19 00:00:00"},
		{"see you Tomorrow!", "1988-10-21 00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, []string{tt.want}, formatAll(parseAt(t, tt.input)))
		})
	}

	t.Run("crosses year boundary", func(t *testing.T) {
		ref := time.Date(1988, 12, 31, 23, 0, 0, 0, time.UTC)
		got, err := Parse("tomorrow", WithReference(ref), WithLocation(time.UTC))
		require.NoError(t, err)
		assert.Equal(t, []string{"1989-01-01 00:00:00"}, formatAll(got))
	})
}

func TestParser_Times(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"full time", "23:10:55", "1988-10-20 23:10:55"},
		{"no seconds", "23:10", "1988-10-20 23:10:00"},
		{"at 6", "at 6", "1988-10-20 18:00:00"},
		{"at 7", "at 7", "1988-10-20 19:00:00"},
		{"at 8", "at 8", "1988-10-20 08:00:00"},
		{"at 0", "at 0", "1988-10-20 12:00:00"},
		{"at 6:30", "at 6:30", "1988-10-20 18:30:00"},
		{"at with seconds", "at 6:30:15", "1988-10-20 06:30:15"},
		{"at with am", "at 6 am", "1988-10-20 06:00:00"},
		{"11 PM", "11 PM", "1988-10-20 23:00:00"},
		{"11 pm", "11 pm", "1988-10-20 23:00:00"},
		{"12 pm", "12 pm", "1988-10-20 12:00:00"},
		{"am keeps hour", "9 am", "1988-10-20 09:00:00"},
		{"full time pm", "11:10:55 PM", "1988-10-20 23:10:55"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []string{tt.want}, formatAll(parseAt(t, tt.input)))
		})
	}
}

func TestParser_MergesDateAndTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"date then time", "23/10/1988 23:10:55", "1988-10-23 23:10:55"},
		{"time then date", "23:10:55 23/10/1988", "1988-10-23 23:10:55"},
		{"relative with at", "tomorrow at 6 PM", "1988-10-21 18:00:00"},
		{"at before relative", "at 6 tomorrow", "1988-10-21 18:00:00"},
		{"named date with at", "23 October 1988 at 6", "1988-10-23 18:00:00"},
		{"month first with year and pm", "Oct 23, 2016 11 pm", "2016-10-23 23:00:00"},
		{"month first with year and time", "October 23 1988 11:00", "1988-10-23 11:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []string{tt.want}, formatAll(parseAt(t, tt.input)))
		})
	}
}

func TestParser_TrailingNumberIsYear(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"month first then clock", "October 23 11:00", []string{"0011-10-23 00:00:00"}},
		{"day first then clock", "23 October 11:00", []string{"0011-10-23 00:00:00"}},
		{"month first then pm hour", "October 23 6 pm", []string{"0006-10-23 00:00:00"}},
		{"five digit year", "23/10/12345", []string{"12345-10-23 00:00:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAll(parseAt(t, tt.input)))
		})
	}
}

func TestParser_SkipsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", []string{}},
		{"no digits", "hello world, how are you?", []string{}},
		{"plain numbers", "I have 3 cats and 12 dogs", []string{}},
		{"trailing garbage after time colon", "23/10/1988 23:abc", []string{"1988-10-23 00:00:00"}},
		{"month out of range", "13/13/2000", []string{}},
		{"day out of range", "31/02/1988", []string{}},
		{"hour out of range", "25:00", []string{}},
		{"minute out of range", "10:75", []string{}},
		{"dangling slash", "12/", []string{}},
		{"dangling at", "meet me at the station", []string{}},
		{"valid after invalid", "31/02/1988 and 01/03/1988", []string{"1988-03-01 00:00:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAll(parseAt(t, tt.input)))
		})
	}
}

func TestParser_ReferenceAccessors(t *testing.T) {
	p, err := New(strings.NewReader("23 October"), WithLocation(time.UTC))
	require.NoError(t, err)

	ref := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	p.SetReference(ref)
	assert.Equal(t, ref, p.Reference())
	assert.Equal(t, time.UTC, p.Location())

	require.NoError(t, p.Parse())
	assert.Equal(t, []string{"2001-10-23 00:00:00"}, formatAll(p.Results()))
}

func TestParser_DefaultsToNowAndLocal(t *testing.T) {
	before := time.Now()
	p, err := New(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, time.Local, p.Location())
	assert.False(t, p.Reference().Before(before))
}

func TestParser_Location(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	got, err := Parse("23/10/1988 23:10", WithReference(reference), WithLocation(est))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, est, got[0].Location())
	assert.Equal(t, time.Date(1988, 10, 24, 4, 10, 0, 0, time.UTC), got[0].UTC())
}

func TestParser_ReparseAddsNothing(t *testing.T) {
	p, err := New(strings.NewReader("23/10/1988"), WithReference(reference), WithLocation(time.UTC))
	require.NoError(t, err)
	require.NoError(t, p.Parse())
	require.Len(t, p.Results(), 1)

	require.NoError(t, p.Parse())
	assert.Len(t, p.Results(), 1)
}

func TestParser_ResultsAreACopy(t *testing.T) {
	p, err := New(strings.NewReader("23/10/1988"), WithReference(reference), WithLocation(time.UTC))
	require.NoError(t, err)
	require.NoError(t, p.Parse())

	got := p.Results()
	got[0] = time.Time{}
	assert.Equal(t, 1988, p.Results()[0].Year())
}

func TestParser_SourceReadError(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("during construction", func(t *testing.T) {
		_, err := New(bufio.NewReader(iotest.ErrReader(errBoom)))
		assert.ErrorIs(t, err, ErrSourceRead)
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("during parse", func(t *testing.T) {
		src := bufio.NewReader(io.MultiReader(strings.NewReader("23/10/1988 "), iotest.ErrReader(errBoom)))
		p, err := New(src, WithReference(reference), WithLocation(time.UTC))
		require.NoError(t, err)

		err = p.Parse()
		assert.ErrorIs(t, err, ErrSourceRead)
		assert.ErrorIs(t, err, errBoom)
	})
}

func TestParser_LogsSkippedFragments(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Parse("23/10/1988 23:abc", WithReference(reference), WithLocation(time.UTC), WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "skipped unrecognized fragment")
	assert.Contains(t, buf.String(), "line=1")
}
