package corpus

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{
			name: "empty text yields no chunks",
			text: "",
			size: 4,
			want: nil,
		},
		{
			name: "shorter than size",
			text: "abc",
			size: 4,
			want: []string{"abc"},
		},
		{
			name: "exactly size",
			text: "abcd",
			size: 4,
			want: []string{"abcd"},
		},
		{
			name: "one over size",
			text: "abcde",
			size: 4,
			want: []string{"abcd", "e"},
		},
		{
			name: "several full chunks",
			text: "abcdefghij",
			size: 3,
			want: []string{"abc", "def", "ghi", "j"},
		},
		{
			name: "counts characters not bytes",
			text: "ñäöü",
			size: 2,
			want: []string{"ñä", "öü"},
		},
		{
			name: "non-positive size keeps text whole",
			text: "abcdef",
			size: 0,
			want: []string{"abcdef"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunk(tt.text, tt.size)
			if len(got) != len(tt.want) {
				t.Fatalf("Chunk(%q, %d) returned %d chunks %q, want %d chunks %q",
					tt.text, tt.size, len(got), got, len(tt.want), tt.want)
			}

			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunk_DefaultThreshold(t *testing.T) {
	exact := strings.Repeat("a", DefaultChunkSize)

	if got := Chunk(exact, DefaultChunkSize); len(got) != 1 {
		t.Errorf("text of exactly %d chars produced %d chunks, want 1", DefaultChunkSize, len(got))
	}

	over := exact + "b"

	got := Chunk(over, DefaultChunkSize)
	if len(got) != 2 {
		t.Fatalf("text of %d chars produced %d chunks, want 2", DefaultChunkSize+1, len(got))
	}

	if got[1] != "b" {
		t.Errorf("second chunk = %q, want %q", got[1], "b")
	}
}

func TestChunk_Reassembles(t *testing.T) {
	text := "Umwana ni umutware. Amazi ni ubuzima! 123 456?"

	for size := 1; size <= utf8.RuneCountInString(text)+1; size++ {
		chunks := Chunk(text, size)
		if strings.Join(chunks, "") != text {
			t.Fatalf("size %d: chunks do not reassemble into the input", size)
		}

		for i, c := range chunks {
			if n := utf8.RuneCountInString(c); n > size || n == 0 {
				t.Errorf("size %d: chunk[%d] has %d chars", size, i, n)
			}
		}
	}
}
