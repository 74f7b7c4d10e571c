package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDictionary(t *testing.T) {
	d, err := ParseDictionary(strings.NewReader("# places\n朝歌 1500 nr\n\n朝歌城\n西岐 1200\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())

	_, err = ParseDictionary(strings.NewReader("\n# nothing\n"))
	assert.Error(t, err)
}

func TestDefaultDictionary(t *testing.T) {
	d := DefaultDictionary()
	assert.Greater(t, d.Len(), 100)
	assert.Equal(t, []string{"朝歌", "西岐"}, d.Match("朝歌西岐"))
}

func TestMatchPrefersLongest(t *testing.T) {
	d, err := ParseDictionary(strings.NewReader("朝歌\n朝歌城\n城外\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"朝歌城", "朝歌"}, d.Match("兵至朝歌城外回朝歌"))
}

func TestHanOnly(t *testing.T) {
	assert.Equal(t, "紂王至朝歌", HanOnly("紂王，至 朝歌！abc 123\n"))
}

func TestCountPlaces(t *testing.T) {
	d, err := ParseDictionary(strings.NewReader("朝歌\n西岐\n孟津\n"))
	require.NoError(t, err)

	stats := CountPlaces(d, []string{"西岐兵至孟津，", "朝歌震動。西岐", "朝歌！西岐"})
	require.Len(t, stats, 3)

	assert.Equal(t, PlaceStat{Rank: 1, Place: "西岐", Count: 3, Share: 50, Cumulative: 50, Level: LevelPrimary}, stats[0])
	assert.Equal(t, "朝歌", stats[1].Place)
	assert.Equal(t, 2, stats[1].Count)
	assert.InDelta(t, 83.33, stats[1].Cumulative, 0.01)
	assert.Equal(t, []string{"3", "孟津", "1", "16.67", "100.00", "primary"}, stats[2].Record())
}

func TestLevels(t *testing.T) {
	assert.Equal(t, LevelPrimary, level(10))
	assert.Equal(t, LevelImportant, level(11))
	assert.Equal(t, LevelImportant, level(20))
	assert.Equal(t, LevelMinor, level(21))
}

func TestCountPlacesEmpty(t *testing.T) {
	assert.Empty(t, CountPlaces(DefaultDictionary(), []string{"abc"}))
}
