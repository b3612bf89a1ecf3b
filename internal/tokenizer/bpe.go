package tokenizer

import (
	"container/heap"
	"strconv"
	"strings"
	"unicode/utf8"

	gosp "github.com/vikesh-raj/go-sentencepiece-encoder/sentencepiece"
	"golang.org/x/text/unicode/norm"
)

// bpeSegmenter applies SentencePiece BPE merges: the normalized text starts
// as one symbol per character (or per user-defined piece) and the adjacent
// pair whose concatenation has the highest score is merged until no pair
// forms a known piece.
type bpeSegmenter struct {
	norm       normalizer
	merges     map[string]mergeable
	userPieces map[string]int
	maxUser    int // longest user-defined piece, in bytes
	bytePieces map[byte]int
	unkID      int
}

type mergeable struct {
	id    int
	score float32
}

func newBPESegmenter(pieces []Piece, ns *gosp.NormalizerSpec) *bpeSegmenter {
	s := &bpeSegmenter{
		norm:       newNormalizer(ns),
		merges:     make(map[string]mergeable, len(pieces)),
		userPieces: make(map[string]int),
		bytePieces: make(map[byte]int),
	}

	unk := -1
	for _, p := range pieces {
		switch p.Type {
		case PieceNormal:
			s.merges[p.Text] = mergeable{id: p.ID, score: p.Score}
		case PieceUserDefined:
			s.userPieces[p.Text] = p.ID
			s.maxUser = max(s.maxUser, len(p.Text))
		case PieceUnknown:
			if unk < 0 {
				unk = p.ID
			}
		case PieceByte:
			hex, ok := strings.CutPrefix(p.Text, "<0x")
			hex, ok2 := strings.CutSuffix(hex, ">")
			if b, err := strconv.ParseUint(hex, 16, 8); ok && ok2 && err == nil {
				s.bytePieces[byte(b)] = p.ID
			}
		}
	}
	s.unkID = max(unk, 0)

	return s
}

// symbol is one node of the doubly linked list being merged.
type symbol struct {
	text       string
	id         int  // -1 until the symbol is known to be a piece
	user       bool // user-defined pieces are never merged
	prev, next int
	version    int
}

type mergeCand struct {
	score      float32
	pos        int
	verL, verR int
}

type mergeHeap []mergeCand

func (h mergeHeap) Len() int { return len(h) }

func (h mergeHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score > h[j].score
	}
	return h[i].pos < h[j].pos
}

func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x any) { *h = append(*h, x.(mergeCand)) }

func (h *mergeHeap) Pop() any {
	old := *h
	c := old[len(old)-1]
	*h = old[:len(old)-1]
	return c
}

func (s *bpeSegmenter) segment(text string) []int {
	text = s.norm.apply(text)
	if text == "" {
		return []int{}
	}

	syms := s.split(text)

	h := &mergeHeap{}
	pushIfMergeable := func(i int) {
		if i < 0 {
			return
		}
		j := syms[i].next
		if j < 0 || syms[i].user || syms[j].user {
			return
		}
		if m, ok := s.merges[syms[i].text+syms[j].text]; ok {
			heap.Push(h, mergeCand{score: m.score, pos: i, verL: syms[i].version, verR: syms[j].version})
		}
	}

	for i := range syms {
		pushIfMergeable(i)
	}

	for h.Len() > 0 {
		c := heap.Pop(h).(mergeCand)
		i := c.pos
		j := syms[i].next
		if j < 0 || syms[i].version != c.verL || syms[j].version != c.verR {
			continue
		}

		merged := syms[i].text + syms[j].text
		syms[i].text = merged
		syms[i].id = s.merges[merged].id
		syms[i].next = syms[j].next
		if nj := syms[j].next; nj >= 0 {
			syms[nj].prev = i
		}
		syms[j].prev, syms[j].next = -1, -1
		syms[i].version++
		syms[j].version++

		pushIfMergeable(syms[i].prev)
		pushIfMergeable(i)
	}

	ids := make([]int, 0, len(syms))
	for i := 0; i >= 0; i = syms[i].next {
		ids = append(ids, s.resolve(syms[i])...)
	}

	return ids
}

// split returns the initial symbols: user-defined pieces matched longest
// first, otherwise single characters.
func (s *bpeSegmenter) split(text string) []symbol {
	syms := make([]symbol, 0, utf8.RuneCountInString(text))
	for text != "" {
		sym := symbol{id: -1, prev: len(syms) - 1, next: len(syms) + 1}

		n := s.matchUser(text)
		if n > 0 {
			sym.id, sym.user = s.userPieces[text[:n]], true
		} else {
			_, n = utf8.DecodeRuneInString(text)
			if m, ok := s.merges[text[:n]]; ok {
				sym.id = m.id
			}
		}

		sym.text = text[:n]
		syms = append(syms, sym)
		text = text[n:]
	}
	syms[len(syms)-1].next = -1

	return syms
}

func (s *bpeSegmenter) matchUser(text string) int {
	for n := min(s.maxUser, len(text)); n > 0; n-- {
		if _, ok := s.userPieces[text[:n]]; ok {
			return n
		}
	}
	return 0
}

// resolve maps a final symbol to ids, falling back to byte pieces and then
// to the unknown piece.
func (s *bpeSegmenter) resolve(sym symbol) []int {
	if sym.id >= 0 {
		return []int{sym.id}
	}

	if len(s.bytePieces) > 0 {
		ids := make([]int, 0, len(sym.text))
		for i := 0; i < len(sym.text); i++ {
			id, ok := s.bytePieces[sym.text[i]]
			if !ok {
				return []int{s.unkID}
			}
			ids = append(ids, id)
		}
		return ids
	}

	return []int{s.unkID}
}

// normalizer reproduces the text-level settings of a model's normalizer
// spec. The precompiled character map of nmt_nfkc is approximated by NFKC.
type normalizer struct {
	nfkc             bool
	removeWhitespace bool
	dummyPrefix      bool
	escape           bool
}

func newNormalizer(ns *gosp.NormalizerSpec) normalizer {
	return normalizer{
		nfkc:             strings.Contains(strings.ToLower(ns.GetName()), "nfkc"),
		removeWhitespace: ns.GetRemoveExtraWhitespaces(),
		dummyPrefix:      ns.GetAddDummyPrefix(),
		escape:           ns.GetEscapeWhitespaces(),
	}
}

func (n normalizer) apply(text string) string {
	if n.nfkc {
		text = norm.NFKC.String(text)
	}
	if n.removeWhitespace {
		text = strings.Join(strings.Fields(text), " ")
	}
	if text == "" {
		return ""
	}
	if n.dummyPrefix {
		text = " " + text
	}
	if n.escape {
		text = strings.ReplaceAll(text, " ", WordBoundary)
	}

	return text
}
