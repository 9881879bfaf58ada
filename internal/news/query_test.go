package news

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBandOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  Band
	}{
		{1.0, BandHigh},
		{0.71, BandHigh},
		{0.7, BandMedium},
		{0.4, BandMedium},
		{0.39, BandLow},
		{0.1, BandLow},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, BandOf(tt.score), "score %v", tt.score)
	}
}

func TestBandContains(t *testing.T) {
	t.Parallel()

	require.True(t, BandAll.Contains(0.1))
	require.True(t, BandHigh.Contains(0.9))
	require.False(t, BandHigh.Contains(0.7))
	require.True(t, BandMedium.Contains(0.7))
	require.False(t, BandLow.Contains(0.4))
}

func TestParseBandAndSort(t *testing.T) {
	t.Parallel()

	band, err := ParseBand("")
	require.NoError(t, err)
	require.Equal(t, BandAll, band)
	_, err = ParseBand("urgent")
	require.Error(t, err)

	sort, err := ParseSortKey("")
	require.NoError(t, err)
	require.Equal(t, SortHotness, sort)
	sort, err = ParseSortKey("date_old")
	require.NoError(t, err)
	require.Equal(t, SortDateOld, sort)
	_, err = ParseSortKey("random")
	require.Error(t, err)
}

func TestArticleShortID(t *testing.T) {
	t.Parallel()

	a := Article{ID: "0123456789abcdef"}
	require.Equal(t, "0123456789ab", a.ShortID())
	require.Equal(t, "abc", Article{ID: "abc"}.ShortID())
}

func TestEntitiesLeading(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", Entities{}.Leading())
	e := Entities{Persons: []string{"Набиуллина"}, Organizations: []string{"ЦБ"}}
	require.Equal(t, "ЦБ", e.Leading())
	require.Equal(t, 2, e.Count())
}
