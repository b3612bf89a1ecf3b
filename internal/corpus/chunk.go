package corpus

import "unicode/utf8"

// Chunk splits text into sequential, non-overlapping pieces of at most size
// characters (runes). Empty text yields no chunks. If size is 0 or negative
// the whole text is returned as a single chunk.
//
// Chunks are cut on character counts alone, so a word straddling a seam is
// segmented as two words.
func Chunk(text string, size int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		return []string{text}
	}

	chunks := make([]string, 0, utf8.RuneCountInString(text)/size+1)
	start, n := 0, 0

	for i := range text {
		if n == size {
			chunks = append(chunks, text[start:i])
			start, n = i, 0
		}
		n++
	}

	return append(chunks, text[start:])
}
