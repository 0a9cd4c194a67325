package reader

import "strings"

// JumpForward walks the stream from index, adding up display durations,
// and returns the first index reached once ms has been covered. It never
// goes past the last token.
func JumpForward(tokens []Token, index, wpm int, ms int64) int {
	if len(tokens) == 0 {
		return index
	}

	index = clampIndex(index, len(tokens))
	var total int64
	target := index
	for i := index; i < len(tokens)-1; i++ {
		total += WordDuration(tokens[i].Text, wpm, tokens[i+1].Text)
		target = i + 1
		if total >= ms {
			break
		}
	}
	return clampIndex(target, len(tokens))
}

// JumpBackward is JumpForward in reverse, stopping at the first token.
func JumpBackward(tokens []Token, index, wpm int, ms int64) int {
	if len(tokens) == 0 {
		return index
	}

	var total int64
	target := index
	for i := min(index, len(tokens)) - 1; i >= 0; i-- {
		total += WordDuration(tokens[i].Text, wpm, textAt(tokens, i+1))
		target = i
		if total >= ms {
			break
		}
	}
	return clampIndex(target, len(tokens))
}

// PreviousSentenceBoundary returns the start of the sentence before index,
// or 0 if there is none.
func PreviousSentenceBoundary(tokens []Token, index int) int {
	if len(tokens) == 0 {
		return index
	}
	for i := min(index, len(tokens)) - 1; i >= 0; i-- {
		if endsSentence(tokens[i].Text) {
			return i + 1
		}
	}
	return 0
}

// NextSentenceBoundary returns the start of the sentence after the one
// containing index, or the last index if the stream ends first.
func NextSentenceBoundary(tokens []Token, index int) int {
	if len(tokens) == 0 {
		return index
	}
	for i := max(index, 0); i < len(tokens); i++ {
		if endsSentence(tokens[i].Text) {
			return min(i+1, len(tokens)-1)
		}
	}
	return len(tokens) - 1
}

func endsSentence(word string) bool {
	return strings.HasSuffix(word, ".") ||
		strings.HasSuffix(word, "!") ||
		strings.HasSuffix(word, "?")
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
