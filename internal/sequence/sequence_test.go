package sequence

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func framePaths(dir, head, tail string, padding, first, last int) []string {
	var paths []string
	verb := "%d"
	if padding > 0 {
		verb = fmt.Sprintf("%%0%dd", padding)
	}
	for i := first; i <= last; i++ {
		paths = append(paths, dir+"/"+head+fmt.Sprintf(verb, i)+tail)
	}
	return paths
}

func TestAssemblePaddedSequence(t *testing.T) {
	paths := framePaths("/shoot", "frame_", ".png", 4, 1, 300)

	cols := Assemble(paths, 2, true)
	require.Len(t, cols, 1)

	col := cols[0]
	assert.Equal(t, "frame_", col.Head)
	assert.Equal(t, ".png", col.Tail)
	assert.Equal(t, 4, col.Padding)
	assert.Len(t, col.Indexes, 300)
	assert.Equal(t, 1, col.First())
	assert.True(t, col.IsContiguous())
	assert.Equal(t, "/shoot/frame_%04d.png [1-300]", col.String())
	assert.Equal(t, "frame_####.png (1-300)", col.Display())
}

func TestAssembleBelowMinimumDiscarded(t *testing.T) {
	cols := Assemble([]string{"/a/shot_0001.png"}, 2, true)
	assert.Empty(t, cols)
}

func TestAssembleNonContiguousDiscarded(t *testing.T) {
	paths := append(
		framePaths("/a", "f_", ".exr", 4, 1, 10),
		framePaths("/a", "f_", ".exr", 4, 20, 30)...,
	)

	assert.Empty(t, Assemble(paths, 2, true))

	cols := Assemble(paths, 2, false)
	require.Len(t, cols, 1)
	assert.False(t, cols[0].IsContiguous())
	assert.Equal(t, "1-10, 20-30", cols[0].Ranges())
}

func TestAssembleSeparatesDiffering(t *testing.T) {
	paths := append(
		framePaths("/a", "left_", ".png", 4, 1, 5),
		framePaths("/a", "right_", ".png", 4, 1, 5)...,
	)
	paths = append(paths, framePaths("/b", "left_", ".png", 4, 1, 5)...)

	cols := Assemble(paths, 2, true)
	require.Len(t, cols, 3)
	assert.Equal(t, "/a/left_%04d.png", cols[0].Template())
	assert.Equal(t, "/a/right_%04d.png", cols[1].Template())
	assert.Equal(t, "/b/left_%04d.png", cols[2].Template())
}

func TestAssembleCrossesPaddingBoundary(t *testing.T) {
	// frame_0998..frame_0999 then frame_1000..frame_1002: the four-digit
	// unpadded members continue the padded run.
	paths := append(
		framePaths("/a", "frame_", ".png", 4, 998, 999),
		"/a/frame_1000.png",
		"/a/frame_1001.png",
		"/a/frame_1002.png",
	)

	cols := Assemble(paths, 2, true)
	require.Len(t, cols, 1)
	assert.Equal(t, 4, cols[0].Padding)
	assert.Equal(t, "998-1002", cols[0].Ranges())
}

func TestAssembleUnpaddedSequence(t *testing.T) {
	cols := Assemble([]string{"/a/f1.png", "/a/f2.png", "/a/f3.png"}, 2, true)
	require.Len(t, cols, 1)
	assert.Equal(t, 0, cols[0].Padding)
	assert.Equal(t, "/a/f%d.png [1-3]", cols[0].String())
}

func TestAssembleIgnoresNonNumbered(t *testing.T) {
	cols := Assemble([]string{"/a/readme.txt", "/a/cover.png"}, 2, true)
	assert.Empty(t, cols)
}

func TestAssembleDuplicatesCollapse(t *testing.T) {
	paths := framePaths("/a", "f_", ".png", 4, 1, 3)
	paths = append(paths, paths...)

	cols := Assemble(paths, 2, true)
	require.Len(t, cols, 1)
	assert.Len(t, cols[0].Indexes, 3)
}

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"/shoot/frame_%04d.png [1-300]",
		"/a/f%d.png [1-3]",
		"/a/shot_%06d.exr [1-100, 102-120]",
		"/a/shot_%02d.exr [5]",
	}
	for _, s := range cases {
		col, err := Parse(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, col.String(), s)
	}
}

func TestParseRejectsPlainPath(t *testing.T) {
	_, err := Parse("/a/movie.mov")
	assert.Error(t, err)
}

func TestParseNoRanges(t *testing.T) {
	col, err := Parse("/a/f_%04d.png")
	require.NoError(t, err)
	assert.Empty(t, col.Indexes)
	assert.Equal(t, 4, col.Padding)
}

func TestFormatFrame(t *testing.T) {
	col := Collection{Dir: "/a", Head: "f_", Tail: ".png", Padding: 4, Indexes: []int{7, 8}}
	assert.Equal(t, "/a/f_0007.png", col.FormatFrame(7))

	unpadded := Collection{Dir: "/a", Head: "f", Tail: ".png", Indexes: []int{12}}
	assert.Equal(t, "/a/f12.png", unpadded.FormatFrame(12))
}

func TestPaths(t *testing.T) {
	col := Collection{Dir: "/a", Head: "f_", Tail: ".png", Padding: 3, Indexes: []int{1, 2, 4}}
	assert.Equal(t, []string{"/a/f_001.png", "/a/f_002.png", "/a/f_004.png"}, col.Paths())
}

func TestRangesSingletons(t *testing.T) {
	col := Collection{Indexes: []int{1, 3, 5, 6, 7, 10}}
	assert.Equal(t, "1, 3, 5-7, 10", col.Ranges())
}
