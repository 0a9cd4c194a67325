package reader

import "unicode/utf8"

// Split is a word cut around its Optimal Recognition Point.
type Split struct {
	Before string
	Pivot  string
	After  string
}

// ORPIndex returns the Optimal Recognition Point for a word: the rune
// position the eye should fix on for fastest recognition.
func ORPIndex(word string) int {
	n := utf8.RuneCountInString(word)
	switch {
	case n <= 1:
		return 0
	case n <= 5:
		return 1
	case n <= 9:
		return 2
	case n <= 13:
		return 3
	}
	return 4
}

// SplitAtORP cuts word into the runes before the pivot, the pivot rune and
// the rest. An empty word yields an empty Split.
func SplitAtORP(word string) Split {
	if word == "" {
		return Split{}
	}
	runes := []rune(word)
	orp := ORPIndex(word)
	return Split{
		Before: string(runes[:orp]),
		Pivot:  string(runes[orp]),
		After:  string(runes[orp+1:]),
	}
}
