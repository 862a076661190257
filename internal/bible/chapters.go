// internal/bible/chapters.go
package bible

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidRange is returned for book/chapter ranges that cannot be expanded.
var ErrInvalidRange = errors.New("invalid chapter range")

// ChapterID formats a chapter identifier such as "Genesis 3".
func ChapterID(book string, chapter int) string {
	return fmt.Sprintf("%s %d", book, chapter)
}

// ParseChapterID splits an identifier into its canonical book and chapter.
// Only canonical book names are accepted.
func ParseChapterID(id string) (Book, int, bool) {
	i := strings.LastIndexByte(id, ' ')
	if i <= 0 {
		return Book{}, 0, false
	}
	b, ok := byName[id[:i]]
	if !ok {
		return Book{}, 0, false
	}
	ch, err := strconv.Atoi(id[i+1:])
	if err != nil || ch < 1 || ch > b.Chapters {
		return Book{}, 0, false
	}
	return b, ch, true
}

// ChaptersInRange expands startBook:startChapter through endBook:endChapter
// inclusive, in canonical order.
func ChaptersInRange(startBook string, startChapter int, endBook string, endChapter int) ([]string, error) {
	first, ok := LookupBook(startBook)
	if !ok {
		return nil, fmt.Errorf("%w: unknown book %q", ErrInvalidRange, startBook)
	}
	last, ok := LookupBook(endBook)
	if !ok {
		return nil, fmt.Errorf("%w: unknown book %q", ErrInvalidRange, endBook)
	}
	if first.Order > last.Order {
		return nil, fmt.Errorf("%w: %s comes after %s", ErrInvalidRange, first.Name, last.Name)
	}
	if startChapter < 1 || startChapter > first.Chapters {
		return nil, fmt.Errorf("%w: %s has no chapter %d", ErrInvalidRange, first.Name, startChapter)
	}
	if endChapter < 1 || endChapter > last.Chapters {
		return nil, fmt.Errorf("%w: %s has no chapter %d", ErrInvalidRange, last.Name, endChapter)
	}
	if first.Order == last.Order && startChapter > endChapter {
		return nil, fmt.Errorf("%w: chapter %d is after chapter %d", ErrInvalidRange, startChapter, endChapter)
	}

	var out []string
	for _, b := range books[first.Order-1 : last.Order] {
		from, to := 1, b.Chapters
		if b.Order == first.Order {
			from = startChapter
		}
		if b.Order == last.Order {
			to = endChapter
		}
		for ch := from; ch <= to; ch++ {
			out = append(out, ChapterID(b.Name, ch))
		}
	}
	return out, nil
}

// ChaptersForBooks expands whole books into their chapters, sorted
// canonically. Unknown names are skipped.
func ChaptersForBooks(names []string) []string {
	seen := make(map[int]bool, len(names))
	var picked []Book
	for _, name := range names {
		b, ok := LookupBook(name)
		if !ok || seen[b.Order] {
			continue
		}
		seen[b.Order] = true
		picked = append(picked, b)
	}
	slices.SortFunc(picked, func(a, b Book) int { return a.Order - b.Order })

	var out []string
	for _, b := range picked {
		for ch := 1; ch <= b.Chapters; ch++ {
			out = append(out, ChapterID(b.Name, ch))
		}
	}
	return out
}

// SortCanonically orders chapter identifiers by book position then chapter
// number. Identifiers that do not parse sort last, in lexical order.
func SortCanonically(chapters []string) []string {
	out := slices.Clone(chapters)
	slices.SortStableFunc(out, compareChapters)
	return out
}

// MergeChapters unions the given lists, drops duplicates and sorts canonically.
func MergeChapters(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, id := range list {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return SortCanonically(out)
}

func compareChapters(a, b string) int {
	ba, ca, okA := ParseChapterID(a)
	bb, cb, okB := ParseChapterID(b)
	switch {
	case okA && okB:
		if ba.Order != bb.Order {
			return ba.Order - bb.Order
		}
		return ca - cb
	case okA:
		return -1
	case okB:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// DistributeEvenly splits chapters into sessionCount ordered buckets keyed
// 1..sessionCount. Sizes differ by at most one and the first
// len(chapters)%sessionCount buckets take the extra chapter.
func DistributeEvenly(chapters []string, sessionCount int) map[int][]string {
	buckets := make(map[int][]string)
	if sessionCount <= 0 || len(chapters) == 0 {
		return buckets
	}
	base := len(chapters) / sessionCount
	extra := len(chapters) % sessionCount

	pos := 0
	for i := 1; i <= sessionCount; i++ {
		size := base
		if i <= extra {
			size++
		}
		bucket := make([]string, size)
		copy(bucket, chapters[pos:pos+size])
		buckets[i] = bucket
		pos += size
	}
	return buckets
}
