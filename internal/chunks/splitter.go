package chunks

import "strings"

// defaultSeparators are tried in order, coarse to fine. CJK sentence
// punctuation sits alongside ASCII so mixed-language papers split on
// sentence boundaries before falling back to words and characters.
var defaultSeparators = []string{"\n\n", "\n", "。", "；", ";", "，", ",", " ", ""}

// SplitText splits text into pieces of at most chunkSize runes, reusing
// up to chunkOverlap trailing runes of one piece as the head of the next.
// Boundaries prefer the coarsest separator present in the text.
func SplitText(text string, chunkSize, chunkOverlap int) []string {
	if chunkSize <= 0 {
		chunkSize = 1400
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return splitRecursive(text, chunkSize, chunkOverlap, defaultSeparators)
}

func splitRecursive(text string, chunkSize, chunkOverlap int, seps []string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if runeLen(text) <= chunkSize {
		return []string{strings.TrimSpace(text)}
	}

	sep, rest, found := pickSeparator(text, seps)
	if !found || sep == "" {
		return hardSplit(text, chunkSize, chunkOverlap)
	}

	// Separators stay attached to the preceding part so merged lengths
	// stay accurate.
	parts := splitAfter(text, sep)

	var out []string
	var cur []string
	curLen := 0

	flush := func() {
		if curLen == 0 {
			return
		}
		if joined := strings.TrimSpace(strings.Join(cur, "")); joined != "" {
			out = append(out, joined)
		}
	}

	for _, part := range parts {
		pl := runeLen(part)

		if pl > chunkSize {
			flush()
			cur, curLen = nil, 0
			out = append(out, splitRecursive(part, chunkSize, chunkOverlap, rest)...)
			continue
		}

		if curLen+pl > chunkSize && curLen > 0 {
			flush()
			// Carry an overlap tail into the next piece.
			for len(cur) > 0 && (curLen > chunkOverlap || curLen+pl > chunkSize) {
				curLen -= runeLen(cur[0])
				cur = cur[1:]
			}
		}

		cur = append(cur, part)
		curLen += pl
	}
	flush()

	return out
}

// pickSeparator returns the first separator present in the text along
// with the finer separators remaining after it.
func pickSeparator(text string, seps []string) (string, []string, bool) {
	for i, s := range seps {
		if s == "" {
			return "", nil, true
		}
		if strings.Contains(text, s) {
			return s, seps[i+1:], true
		}
	}
	return "", nil, false
}

// splitAfter splits around sep keeping sep attached to the left piece.
func splitAfter(text, sep string) []string {
	raw := strings.SplitAfter(text, sep)
	out := raw[:0]
	for _, p := range raw {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// hardSplit windows the text by runes when no separator applies.
func hardSplit(text string, chunkSize, chunkOverlap int) []string {
	runes := []rune(text)
	step := chunkSize - chunkOverlap
	if step <= 0 {
		step = chunkSize
	}

	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			out = append(out, piece)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}
