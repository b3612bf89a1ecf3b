// Package tokenizer loads trained SentencePiece models and exposes their
// vocabulary and encoder. BPE models are segmented by replaying their
// merges; unigram, char and word models go through the Viterbi encoder of
// github.com/vikesh-raj/go-sentencepiece-encoder.
package tokenizer

import "errors"

var (
	// ErrEmptyPath is returned when Load is called with an empty path.
	ErrEmptyPath = errors.New("tokenizer model path must not be empty")
	// ErrEmptyModel is returned when a model file holds no pieces.
	ErrEmptyModel = errors.New("tokenizer model has no pieces")
	// ErrUnknownID is returned for ids outside [0, VocabSize).
	ErrUnknownID = errors.New("token id out of vocabulary range")
)

// WordBoundary is the SentencePiece marker that replaces whitespace in pieces.
const WordBoundary = "▁"

// Token is one segment of an encoded text.
type Token struct {
	ID    int
	Piece string
}

// PieceType mirrors the SentencePiece piece kinds.
type PieceType int

const (
	PieceNormal PieceType = iota + 1
	PieceUnknown
	PieceControl
	PieceUserDefined
	PieceUnused
	PieceByte
)

func (t PieceType) String() string {
	switch t {
	case PieceNormal:
		return "normal"
	case PieceUnknown:
		return "unknown"
	case PieceControl:
		return "control"
	case PieceUserDefined:
		return "user_defined"
	case PieceUnused:
		return "unused"
	case PieceByte:
		return "byte"
	default:
		return "invalid"
	}
}

// Piece is a vocabulary entry. ID equals its position in the model.
type Piece struct {
	ID    int
	Text  string
	Score float32
	Type  PieceType
}

// Vocabulary gives id-ordered access to the pieces of a model.
type Vocabulary interface {
	VocabSize() int
	IDToPiece(id int) (string, error)
}

// Encoder segments text into pieces and ids.
type Encoder interface {
	EncodePieces(text string) ([]string, error)
	EncodeIDs(text string) ([]int, error)
}
