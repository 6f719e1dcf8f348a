package extraction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDates_SeparatorsCanonicalize(t *testing.T) {
	want := Date{Year: 2024, Month: time.March, Day: 15}
	for _, in := range []string{"15/03/2024", "15-03-2024", "15.03.2024", "15/3/24"} {
		t.Run(in, func(t *testing.T) {
			got := findDates("x " + in + " y")
			require.Len(t, got, 1)
			assert.Equal(t, want, got[0].date)
			assert.Equal(t, "2024-03-15", got[0].date.String())
		})
	}
}

func TestFindDates_TwoDigitYearPivot(t *testing.T) {
	tests := []struct {
		in   string
		year int
	}{
		{"01/01/49", 2049},
		{"01/01/50", 2050},
		{"01/01/51", 1951},
		{"01/01/99", 1999},
		{"01/01/00", 2000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := findDates(tt.in)
			require.Len(t, got, 1)
			assert.Equal(t, tt.year, got[0].date.Year)
		})
	}
}

func TestFindDates_InvalidCalendarDatesDropped(t *testing.T) {
	got := findDates("31/02/2024 10/03/2024 45/13/2024")
	require.Len(t, got, 1)
	assert.Equal(t, "2024-03-10", got[0].date.String())
	assert.Equal(t, 11, got[0].start)
}

func TestFindDates_NoMatch(t *testing.T) {
	assert.Empty(t, findDates("lote 123 dose 2"))
	assert.Empty(t, findDates("15/03/202"))
	assert.Empty(t, findDates("115/03/2024x"))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2024-03-15", "2024-03-15", false},
		{" 15/03/2024 ", "2024-03-15", false},
		{"1.2.51", "1951-02-01", false},
		{"2024-02-30", "", true},
		{"30/02/2024", "", true},
		{"soon", "", true},
		{"15/03/2024 extra", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDate(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestDate_TimeRoundTrip(t *testing.T) {
	d := Date{Year: 2025, Month: time.April, Day: 20}
	assert.Equal(t, d, DateOf(d.Time()))
	assert.False(t, d.IsZero())
	assert.True(t, Date{}.IsZero())
}
