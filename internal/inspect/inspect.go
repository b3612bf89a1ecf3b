// Package inspect prints the vocabulary of a trained model and the
// segmentation of ad-hoc text.
package inspect

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/example/go-kinyatok/internal/tokenizer"
)

// ErrLengthMismatch is returned when an encoder yields a different number of
// pieces and ids for the same text.
var ErrLengthMismatch = errors.New("piece and id sequences differ in length")

// ShowVocab writes the vocabulary size followed by one "id: piece" line per
// id, in ascending id order.
func ShowVocab(w io.Writer, vocab tokenizer.Vocabulary) error {
	bw := bufio.NewWriter(w)

	size := vocab.VocabSize()
	fmt.Fprintf(bw, "Vocabulary Size: %d\n", size)
	fmt.Fprintln(bw, "Vocabulary:")

	for id := 0; id < size; id++ {
		piece, err := vocab.IDToPiece(id)
		if err != nil {
			return fmt.Errorf("piece %d: %w", id, err)
		}

		fmt.Fprintf(bw, "%d: %s\n", id, piece)
	}

	return bw.Flush()
}

// Tokenize segments text and writes one line per token with its position,
// piece and id. The tokens are returned in order.
func Tokenize(w io.Writer, enc tokenizer.Encoder, text string) ([]tokenizer.Token, error) {
	pieces, err := enc.EncodePieces(text)
	if err != nil {
		return nil, fmt.Errorf("encode pieces: %w", err)
	}

	ids, err := enc.EncodeIDs(text)
	if err != nil {
		return nil, fmt.Errorf("encode ids: %w", err)
	}

	if len(pieces) != len(ids) {
		return nil, fmt.Errorf("%w: %d pieces, %d ids", ErrLengthMismatch, len(pieces), len(ids))
	}

	tokens := make([]tokenizer.Token, len(ids))
	for i := range ids {
		tokens[i] = tokenizer.Token{ID: ids[i], Piece: pieces[i]}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "Tokenized text with indices:")

	for i, tok := range tokens {
		fmt.Fprintf(bw, "Index %d: Token '%s' (id %d)\n", i, tok.Piece, tok.ID)
	}

	if err := bw.Flush(); err != nil {
		return nil, err
	}

	return tokens, nil
}
