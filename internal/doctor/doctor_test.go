package doctor_test

import (
	"strings"
	"testing"

	"github.com/example/go-kinyatok/internal/doctor"
)

func passingConfig() doctor.Config {
	return doctor.Config{
		SpmTrainVersion: func() (string, error) { return "sentencepiece 0.2.0", nil },
		InputDir:        "data",
		ListCorpusFiles: func() ([]string, error) { return []string{"data/a.txt"}, nil },
	}
}

// ---------------------------------------------------------------------------
// all-pass scenario
// ---------------------------------------------------------------------------

func TestRun_AllChecksPass(t *testing.T) {
	var out strings.Builder
	result := doctor.Run(passingConfig(), &out)

	if result.Failed() {
		t.Errorf("expected all checks to pass; failures: %v", result.Failures())
	}

	if !strings.Contains(out.String(), "spm_train binary: sentencepiece 0.2.0") {
		t.Errorf("output should report the trainer version; got:\n%s", out.String())
	}

	if !strings.Contains(out.String(), "corpus input: data (1 files)") {
		t.Errorf("output should report the corpus file count; got:\n%s", out.String())
	}
}

// ---------------------------------------------------------------------------
// spm_train binary
// ---------------------------------------------------------------------------

func TestRun_SpmTrainMissingFails(t *testing.T) {
	cfg := passingConfig()
	cfg.SpmTrainVersion = func() (string, error) { return "", errBinaryNotFound }

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if !result.Failed() {
		t.Fatal("expected failure when spm_train is not found")
	}

	if !hasFailureContaining(result.Failures(), "spm_train") {
		t.Errorf("expected failure mentioning spm_train, got: %v", result.Failures())
	}
}

func TestRun_SpmTrainTooOldFails(t *testing.T) {
	cfg := passingConfig()
	cfg.SpmTrainVersion = func() (string, error) { return "sentencepiece 0.1.8", nil }

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if !result.Failed() {
		t.Fatal("expected failure for sentencepiece 0.1.8")
	}

	if !hasFailureContaining(result.Failures(), "version") {
		t.Errorf("expected failure mentioning version, got: %v", result.Failures())
	}
}

func TestRun_SkipSpmTrain(t *testing.T) {
	cfg := passingConfig()
	cfg.SkipSpmTrain = true
	cfg.SpmTrainVersion = func() (string, error) {
		t.Fatal("version probe must not run when skipped")
		return "", nil
	}

	var out strings.Builder

	result := doctor.Run(cfg, &out)
	if result.Failed() {
		t.Fatalf("expected no failures, got: %v", result.Failures())
	}

	if !strings.Contains(out.String(), "spm_train binary: skipped") {
		t.Fatalf("expected skipped output, got:\n%s", out.String())
	}
}

// ---------------------------------------------------------------------------
// corpus input
// ---------------------------------------------------------------------------

func TestRun_CorpusListErrorFails(t *testing.T) {
	cfg := passingConfig()
	cfg.ListCorpusFiles = func() ([]string, error) { return nil, sentinelError("not a directory") }

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if !hasFailureContaining(result.Failures(), "corpus input") {
		t.Errorf("expected corpus failure, got: %v", result.Failures())
	}
}

func TestRun_NoCorpusFilesFails(t *testing.T) {
	cfg := passingConfig()
	cfg.ListCorpusFiles = func() ([]string, error) { return nil, nil }

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if !hasFailureContaining(result.Failures(), "no matching files") {
		t.Errorf("expected no-files failure, got: %v", result.Failures())
	}
}

// ---------------------------------------------------------------------------
// trained model
// ---------------------------------------------------------------------------

func TestRun_ModelLoads(t *testing.T) {
	cfg := passingConfig()
	cfg.ModelPath = "kinya.model"
	cfg.LoadModel = func(string) (int, error) { return 28000, nil }

	var out strings.Builder

	result := doctor.Run(cfg, &out)
	if result.Failed() {
		t.Errorf("expected pass; failures: %v", result.Failures())
	}

	if !strings.Contains(out.String(), "tokenizer model: kinya.model (vocab 28000)") {
		t.Errorf("output should report the model; got:\n%s", out.String())
	}
}

func TestRun_ModelMissingSkippedUnlessRequired(t *testing.T) {
	cfg := passingConfig()
	cfg.ModelPath = "/nonexistent/kinya.model"
	cfg.LoadModel = func(string) (int, error) { return 0, sentinelError("no such file") }

	var out strings.Builder

	result := doctor.Run(cfg, &out)
	if result.Failed() {
		t.Fatalf("missing model should be skipped, got: %v", result.Failures())
	}

	if !strings.Contains(out.String(), "tokenizer model: skipped") {
		t.Errorf("expected skipped output, got:\n%s", out.String())
	}

	cfg.RequireModel = true
	out.Reset()

	result = doctor.Run(cfg, &out)
	if !hasFailureContaining(result.Failures(), "tokenizer model") {
		t.Errorf("expected tokenizer model failure, got: %v", result.Failures())
	}
}

// ---------------------------------------------------------------------------
// output markers
// ---------------------------------------------------------------------------

func TestRun_OutputContainsPassAndFailMarkers(t *testing.T) {
	cfg := passingConfig()
	cfg.SpmTrainVersion = func() (string, error) { return "", errBinaryNotFound }

	var out strings.Builder
	doctor.Run(cfg, &out)

	body := out.String()
	if !strings.Contains(body, doctor.PassMark) {
		t.Errorf("output missing pass marker %q:\n%s", doctor.PassMark, body)
	}

	if !strings.Contains(body, doctor.FailMark) {
		t.Errorf("output missing fail marker %q:\n%s", doctor.FailMark, body)
	}
}

func TestResult_AddFailure(t *testing.T) {
	var r doctor.Result
	r.AddFailure("external check")

	if !r.Failed() || r.Failures()[0] != "external check" {
		t.Errorf("Failures = %v", r.Failures())
	}
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

type sentinelError string

func (e sentinelError) Error() string { return string(e) }

var errBinaryNotFound = sentinelError("binary not found")

func hasFailureContaining(failures []string, substr string) bool {
	substr = strings.ToLower(substr)
	for _, f := range failures {
		if strings.Contains(strings.ToLower(f), substr) {
			return true
		}
	}

	return false
}
