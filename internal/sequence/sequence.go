// Package sequence discovers and addresses numbered image sequences.
//
// A sequence is a set of sibling files sharing a "head{digits}tail" naming
// pattern. The canonical string form is a printf-style path template plus
// the covered index ranges, e.g.
//
//	/shoot/frame_%04d.png [1-100, 102-120]
//
// which is what the catalogue stores as the item path. The display form
// replaces the placeholder with padding hashes: "frame_####.png (1-100, 102-120)".
package sequence

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Collection is one assembled sequence.
type Collection struct {
	Dir     string
	Head    string
	Tail    string
	Padding int   // digit width for zero-padded runs, 0 for unpadded
	Indexes []int // sorted ascending, unique
}

var (
	digitsRe      = regexp.MustCompile(`\d+`)
	placeholderRe = regexp.MustCompile(`%(?:0(\d+))?d`)
)

// member is a single file matched against the sequence pattern.
type member struct {
	index   int
	width   int
	padded  bool
	dir     string
	head    string
	tail    string
}

// splitMember decomposes a path around the last digit run of its basename.
// Paths with no digit run are not sequence members.
func splitMember(path string) (member, bool) {
	dir, base := filepath.Split(path)
	runs := digitsRe.FindAllStringIndex(base, -1)
	if len(runs) == 0 {
		return member{}, false
	}

	last := runs[len(runs)-1]
	digits := base[last[0]:last[1]]
	index, err := strconv.Atoi(digits)
	if err != nil {
		// Digit runs longer than an int are not frame numbers.
		return member{}, false
	}

	return member{
		index:  index,
		width:  len(digits),
		padded: len(digits) > 1 && digits[0] == '0',
		dir:    dir,
		head:   base[:last[0]],
		tail:   base[last[1]:],
	}, true
}

// Assemble clusters image paths into sequences. Members are grouped by
// directory, head, tail and padding; zero-padded runs are keyed by their
// digit width so frame_0999 and frame_1000 land in the same group.
// Groups smaller than minItems are discarded, as are non-contiguous
// groups when contiguousOnly is set. Results are ordered by template for
// determinism.
func Assemble(paths []string, minItems int, contiguousOnly bool) []Collection {
	type group struct {
		col   Collection
		seen  map[int]bool
		width int // uniform member width, -1 once mixed
	}

	groups := make(map[string]*group)
	for _, path := range paths {
		m, ok := splitMember(path)
		if !ok {
			continue
		}

		padding := 0
		if m.padded {
			padding = m.width
		}
		key := fmt.Sprintf("%s\x00%s\x00%s\x00%d", m.dir, m.head, m.tail, padding)

		g := groups[key]
		if g == nil {
			g = &group{
				col: Collection{
					Dir:     m.dir,
					Head:    m.head,
					Tail:    m.tail,
					Padding: padding,
				},
				seen:  make(map[int]bool),
				width: m.width,
			}
			groups[key] = g
		}
		if g.width != m.width {
			g.width = -1
		}
		if !g.seen[m.index] {
			g.seen[m.index] = true
			g.col.Indexes = append(g.col.Indexes, m.index)
		}
	}

	// Fold unpadded groups into a padded sibling when every member shares
	// the padded group's width: frame_1000.png continues frame_0001..0999.
	for key, g := range groups {
		if g.col.Padding != 0 || g.width <= 1 {
			continue
		}
		paddedKey := fmt.Sprintf("%s\x00%s\x00%s\x00%d", g.col.Dir, g.col.Head, g.col.Tail, g.width)
		if sibling, ok := groups[paddedKey]; ok {
			for _, idx := range g.col.Indexes {
				if !sibling.seen[idx] {
					sibling.seen[idx] = true
					sibling.col.Indexes = append(sibling.col.Indexes, idx)
				}
			}
			delete(groups, key)
		}
	}

	var out []Collection
	for _, g := range groups {
		if len(g.col.Indexes) < minItems {
			continue
		}
		sort.Ints(g.col.Indexes)
		if contiguousOnly && !g.col.IsContiguous() {
			continue
		}
		out = append(out, g.col)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Template() < out[j].Template()
	})
	return out
}

// Parse decodes the canonical string form produced by String. The ranges
// suffix is optional; without it the collection has no indexes.
func Parse(s string) (Collection, error) {
	template := s
	var ranges string
	if i := strings.LastIndex(s, " ["); i >= 0 && strings.HasSuffix(s, "]") {
		template = s[:i]
		ranges = s[i+2 : len(s)-1]
	}

	dir, base := filepath.Split(template)
	loc := placeholderRe.FindStringSubmatchIndex(base)
	if loc == nil {
		return Collection{}, fmt.Errorf("no frame placeholder in %q", s)
	}

	col := Collection{
		Dir:  dir,
		Head: base[:loc[0]],
		Tail: base[loc[1]:],
	}
	if loc[2] >= 0 {
		padding, err := strconv.Atoi(base[loc[2]:loc[3]])
		if err != nil {
			return Collection{}, fmt.Errorf("parsing padding in %q: %w", s, err)
		}
		col.Padding = padding
	}

	if ranges != "" {
		indexes, err := expandRanges(ranges)
		if err != nil {
			return Collection{}, fmt.Errorf("parsing ranges in %q: %w", s, err)
		}
		col.Indexes = indexes
	}

	return col, nil
}

// expandRanges parses "1-100, 102, 110-120" into a sorted index slice.
func expandRanges(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, found := strings.Cut(part, "-")
		first, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("bad range %q: %w", part, err)
		}
		last := first
		if found {
			if last, err = strconv.Atoi(hi); err != nil {
				return nil, fmt.Errorf("bad range %q: %w", part, err)
			}
		}
		if last < first {
			return nil, fmt.Errorf("bad range %q: descending", part)
		}
		for i := first; i <= last; i++ {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out, nil
}

// placeholder returns the printf verb for the collection's padding.
func (c Collection) placeholder() string {
	if c.Padding > 0 {
		return fmt.Sprintf("%%0%dd", c.Padding)
	}
	return "%d"
}

// Template returns the path template with the printf-style placeholder,
// the form ffmpeg consumes via -i.
func (c Collection) Template() string {
	return filepath.Join(c.Dir, c.Head+c.placeholder()+c.Tail)
}

// String returns the canonical form: template plus index ranges. This is
// the catalogue path for sequence items; Parse round-trips it.
func (c Collection) String() string {
	if len(c.Indexes) == 0 {
		return c.Template()
	}
	return fmt.Sprintf("%s [%s]", c.Template(), c.Ranges())
}

// Display returns the viewer form of the basename: padding hashes plus
// ranges, e.g. "frame_####.png (1-300)".
func (c Collection) Display() string {
	return fmt.Sprintf("%s%s%s (%s)", c.Head, strings.Repeat("#", c.Padding), c.Tail, c.Ranges())
}

// Ranges compresses the index set into "1-100, 102, 110-120" form.
func (c Collection) Ranges() string {
	if len(c.Indexes) == 0 {
		return ""
	}

	var parts []string
	start, prev := c.Indexes[0], c.Indexes[0]
	flush := func() {
		if start == prev {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}
	for _, idx := range c.Indexes[1:] {
		if idx == prev+1 {
			prev = idx
			continue
		}
		flush()
		start, prev = idx, idx
	}
	flush()
	return strings.Join(parts, ", ")
}

// FormatFrame returns the concrete path of one frame index.
func (c Collection) FormatFrame(index int) string {
	return filepath.Join(c.Dir, c.Head+fmt.Sprintf(c.placeholder(), index)+c.Tail)
}

// First returns the lowest frame index. Call only on non-empty collections.
func (c Collection) First() int {
	return c.Indexes[0]
}

// IsContiguous reports whether the index set has no gaps.
func (c Collection) IsContiguous() bool {
	if len(c.Indexes) == 0 {
		return false
	}
	return c.Indexes[len(c.Indexes)-1]-c.Indexes[0]+1 == len(c.Indexes)
}

// Paths returns the concrete path of every member frame.
func (c Collection) Paths() []string {
	paths := make([]string, 0, len(c.Indexes))
	for _, idx := range c.Indexes {
		paths = append(paths, c.FormatFrame(idx))
	}
	return paths
}
