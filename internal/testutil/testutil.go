// Package testutil provides skip helpers and synthetic SentencePiece models
// for tests.
//
// Typical usage:
//
//	func TestTrainIntegration(t *testing.T) {
//	    exe := testutil.RequireSpmTrain(t)
//	    ...
//	}
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	gosp "github.com/vikesh-raj/go-sentencepiece-encoder/sentencepiece"
	"google.golang.org/protobuf/proto"
)

// SpecialPieces are the leading pieces of every model spm_train writes.
var SpecialPieces = []string{"<unk>", "<s>", "</s>"}

// HelloWorldPieces is a small BPE vocabulary, in merge order followed by the
// single characters, able to segment "hello world".
var HelloWorldPieces = []string{
	"he", "ll", "▁he", "llo", "▁hello",
	"or", "▁w", "▁wor", "ld", "▁world",
	"▁", "h", "e", "l", "o", "w", "r", "d",
}

// RequireSpmTrain skips the test if the spm_train executable is not found in
// PATH or at the path given by KINYATOK_TRAINER_SPM_TRAIN_PATH. It returns
// the resolved executable.
func RequireSpmTrain(tb testing.TB) string {
	tb.Helper()

	exe := os.Getenv("KINYATOK_TRAINER_SPM_TRAIN_PATH")
	if exe == "" {
		exe = "spm_train"
	}

	path, err := exec.LookPath(exe)
	if err != nil {
		tb.Skipf("spm_train not available (%q not in PATH); set KINYATOK_TRAINER_SPM_TRAIN_PATH to override", exe)
	}

	return path
}

// ModelBytes serializes a SentencePiece model of the given type ("bpe" or
// "unigram") whose vocabulary is SpecialPieces followed by pieces. Scores
// decrease with the id, as spm_train assigns them.
func ModelBytes(tb testing.TB, modelType string, pieces []string) []byte {
	tb.Helper()

	mt := gosp.TrainerSpec_BPE
	if modelType == "unigram" {
		mt = gosp.TrainerSpec_UNIGRAM
	}

	all := append(append([]string(nil), SpecialPieces...), pieces...)

	mp := &gosp.ModelProto{
		TrainerSpec: &gosp.TrainerSpec{
			ModelType: mt.Enum(),
			VocabSize: proto.Int32(int32(len(all))),
		},
		NormalizerSpec: &gosp.NormalizerSpec{
			Name:                   proto.String("identity"),
			AddDummyPrefix:         proto.Bool(true),
			RemoveExtraWhitespaces: proto.Bool(true),
			EscapeWhitespaces:      proto.Bool(true),
		},
	}

	for i, p := range all {
		typ := gosp.ModelProto_SentencePiece_NORMAL
		switch {
		case i == 0:
			typ = gosp.ModelProto_SentencePiece_UNKNOWN
		case i < len(SpecialPieces):
			typ = gosp.ModelProto_SentencePiece_CONTROL
		}

		score := float32(0)
		if typ == gosp.ModelProto_SentencePiece_NORMAL {
			score = -float32(i - len(SpecialPieces))
		}

		mp.Pieces = append(mp.Pieces, &gosp.ModelProto_SentencePiece{
			Piece: proto.String(p),
			Score: proto.Float32(score),
			Type:  typ.Enum(),
		})
	}

	data, err := proto.Marshal(mp)
	if err != nil {
		tb.Fatalf("marshal model proto: %v", err)
	}

	return data
}

// WriteModel writes ModelBytes to dir/name and returns the path.
func WriteModel(tb testing.TB, dir, name, modelType string, pieces []string) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, ModelBytes(tb, modelType, pieces), 0o644); err != nil {
		tb.Fatalf("write model: %v", err)
	}

	return path
}

// Pieces returns n distinct single-character pieces, useful for padding a
// synthetic vocabulary to an exact size.
func Pieces(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune(0x4E00 + i))
	}

	return out
}
