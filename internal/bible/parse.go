// internal/bible/parse.go
package bible

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// segmentPattern matches "Book", "Book N" and "Book N-M". A leading 1-3
// belongs to the book name ("1 John 2").
var segmentPattern = regexp.MustCompile(`^((?:[1-3]\s*)?[^\d]+?)\s*(?:(\d+)(?:\s*[-–]\s*(\d+))?)?$`)

// ParseChapterSpecification parses a comma separated list of segments, each
// a whole book, a single chapter or a chapter range. It returns the
// deduplicated chapters in canonical order and one diagnostic per skipped
// segment. An empty chapter list is not an error.
func ParseChapterSpecification(text string) (chapters []string, diagnostics []string) {
	var found []string
	for _, raw := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ';' || r == '\n' }) {
		segment := strings.TrimSpace(raw)
		if segment == "" {
			continue
		}
		ids, err := parseSegment(segment)
		if err != nil {
			diagnostics = append(diagnostics, fmt.Sprintf("skipped %q: %v", segment, err))
			continue
		}
		found = append(found, ids...)
	}
	return MergeChapters(found), diagnostics
}

func parseSegment(segment string) ([]string, error) {
	m := segmentPattern.FindStringSubmatch(segment)
	if m == nil {
		return nil, fmt.Errorf("unrecognised format")
	}
	b, ok := LookupBook(m[1])
	if !ok {
		return nil, fmt.Errorf("unknown book %q", strings.TrimSpace(m[1]))
	}
	if m[2] == "" {
		return ChaptersForBooks([]string{b.Name}), nil
	}

	from, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, fmt.Errorf("bad chapter %q", m[2])
	}
	to := from
	if m[3] != "" {
		if to, err = strconv.Atoi(m[3]); err != nil {
			return nil, fmt.Errorf("bad chapter %q", m[3])
		}
	}
	return ChaptersInRange(b.Name, from, b.Name, to)
}
