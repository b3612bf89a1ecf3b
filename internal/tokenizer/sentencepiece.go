package tokenizer

import (
	"fmt"
	"os"
	"strings"

	gosp "github.com/vikesh-raj/go-sentencepiece-encoder/sentencepiece"
	"google.golang.org/protobuf/proto"
)

// Model is a trained SentencePiece model loaded read-only from disk.
type Model struct {
	path      string
	modelType string
	pieces    []Piece
	seg       segmenter
}

// segmenter returns the piece ids for text.
type segmenter interface {
	segment(text string) []int
}

// Load reads and parses the SentencePiece model at path. BPE models are
// encoded by applying the model's merges; all other model types use the
// Viterbi encoder from github.com/vikesh-raj/go-sentencepiece-encoder.
func Load(path string) (*Model, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load sentencepiece model %q: %w", path, err)
	}

	var mp gosp.ModelProto
	if err := proto.Unmarshal(data, &mp); err != nil {
		return nil, fmt.Errorf("parse sentencepiece model %q: %w", path, err)
	}

	if len(mp.GetPieces()) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyModel)
	}

	m := &Model{
		path:      path,
		modelType: strings.ToLower(mp.GetTrainerSpec().GetModelType().String()),
		pieces:    make([]Piece, len(mp.GetPieces())),
	}

	for i, p := range mp.GetPieces() {
		m.pieces[i] = Piece{
			ID:    i,
			Text:  p.GetPiece(),
			Score: p.GetScore(),
			Type:  pieceType(p.GetType()),
		}
	}

	if mp.GetTrainerSpec().GetModelType() == gosp.TrainerSpec_BPE {
		m.seg = newBPESegmenter(m.pieces, mp.GetNormalizerSpec())
	} else {
		m.seg, err = newViterbiSegmenter(path)
		if err != nil {
			return nil, fmt.Errorf("load sentencepiece model %q: %w", path, err)
		}
	}

	return m, nil
}

// Path returns the file the model was loaded from.
func (m *Model) Path() string { return m.path }

// Type returns the trained model type, e.g. "bpe" or "unigram".
func (m *Model) Type() string { return m.modelType }

// VocabSize returns the number of pieces in the model.
func (m *Model) VocabSize() int { return len(m.pieces) }

// IDToPiece returns the piece text stored at id.
func (m *Model) IDToPiece(id int) (string, error) {
	if id < 0 || id >= len(m.pieces) {
		return "", fmt.Errorf("id %d (vocab size %d): %w", id, len(m.pieces), ErrUnknownID)
	}

	return m.pieces[id].Text, nil
}

// Pieces returns a copy of the vocabulary in id order.
func (m *Model) Pieces() []Piece {
	return append([]Piece(nil), m.pieces...)
}

// EncodeIDs segments text and returns the piece ids, left to right.
func (m *Model) EncodeIDs(text string) ([]int, error) {
	if text == "" {
		return []int{}, nil
	}

	ids := m.seg.segment(text)
	for _, id := range ids {
		if id < 0 || id >= len(m.pieces) {
			return nil, fmt.Errorf("encoder produced id %d: %w", id, ErrUnknownID)
		}
	}

	return ids, nil
}

// EncodePieces segments text and returns the piece strings, left to right.
func (m *Model) EncodePieces(text string) ([]string, error) {
	ids, err := m.EncodeIDs(text)
	if err != nil {
		return nil, err
	}

	pieces := make([]string, len(ids))
	for i, id := range ids {
		pieces[i] = m.pieces[id].Text
	}

	return pieces, nil
}

// Encode segments text into (piece, id) tokens.
func (m *Model) Encode(text string) ([]Token, error) {
	ids, err := m.EncodeIDs(text)
	if err != nil {
		return nil, err
	}

	tokens := make([]Token, len(ids))
	for i, id := range ids {
		tokens[i] = Token{ID: id, Piece: m.pieces[id].Text}
	}

	return tokens, nil
}

// Detokenize joins pieces back into text, turning word-boundary markers into
// spaces and dropping the leading one.
func Detokenize(pieces []string) string {
	s := strings.ReplaceAll(strings.Join(pieces, ""), WordBoundary, " ")
	return strings.TrimPrefix(s, " ")
}

func pieceType(t gosp.ModelProto_SentencePiece_Type) PieceType {
	switch t {
	case gosp.ModelProto_SentencePiece_NORMAL:
		return PieceNormal
	case gosp.ModelProto_SentencePiece_UNKNOWN:
		return PieceUnknown
	case gosp.ModelProto_SentencePiece_CONTROL:
		return PieceControl
	case gosp.ModelProto_SentencePiece_USER_DEFINED:
		return PieceUserDefined
	case gosp.ModelProto_SentencePiece_UNUSED:
		return PieceUnused
	case gosp.ModelProto_SentencePiece_Type(6): // BYTE
		return PieceByte
	default:
		return PieceNormal
	}
}

// viterbiSegmenter wraps the pure-Go unigram encoder.
type viterbiSegmenter struct {
	proc gosp.Sentencepiece
}

func newViterbiSegmenter(path string) (*viterbiSegmenter, error) {
	proc, err := gosp.NewSentencepieceFromFile(path, false)
	if err != nil {
		return nil, err
	}

	return &viterbiSegmenter{proc: proc}, nil
}

func (s *viterbiSegmenter) segment(text string) []int {
	raw := s.proc.TokenizeToIDs(text)

	ids := make([]int, len(raw))
	for i, id := range raw {
		ids[i] = int(id)
	}

	return ids
}
