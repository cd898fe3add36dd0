package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier(t *testing.T) {
	tests := []struct {
		name   string
		res    *Result
		failed bool
	}{
		{"clean success", &Result{ExitCode: 0, Stdout: []byte("/usr/bin/ls\n")}, false},
		{"empty success", &Result{ExitCode: 0}, false},
		{"non-zero exit", &Result{ExitCode: 1}, true},
		{"non-zero exit with clean stdout", &Result{ExitCode: 2, Stdout: []byte("all good")}, true},
		{"error keyword", &Result{ExitCode: 0, Stdout: []byte("Error: This does not seem to be a WordPress installation.")}, true},
		{"uppercase keyword", &Result{ExitCode: 0, Stdout: []byte("PERMISSION DENIED")}, true},
		{"failed keyword", &Result{ExitCode: 0, Stdout: []byte("download failed")}, true},
		{"not found keyword", &Result{ExitCode: 0, Stdout: []byte("wp: Not Found")}, true},
		{"no such file", &Result{ExitCode: 0, Stdout: []byte("No such file or directory")}, true},
		{"keyword only on stderr", &Result{ExitCode: 0, Stderr: []byte("warning: error in plugin")}, false},
		{"nil result", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.failed, KeywordClassifier(tt.res))
			assert.Equal(t, tt.failed, Failed(tt.res))
		})
	}
}

func TestExitCodeClassifier(t *testing.T) {
	assert.False(t, ExitCodeClassifier(&Result{ExitCode: 0, Stdout: []byte("error")}))
	assert.True(t, ExitCodeClassifier(&Result{ExitCode: 1}))
	assert.True(t, ExitCodeClassifier(nil))
}

func TestClassifierOrDefault(t *testing.T) {
	var c Classifier
	assert.True(t, c.OrDefault()(&Result{Stdout: []byte("error")}))

	c = ExitCodeClassifier
	assert.False(t, c.OrDefault()(&Result{Stdout: []byte("error")}))
}

func TestResultFirstLine(t *testing.T) {
	res := &Result{Stdout: []byte("\n  first out\nsecond"), Stderr: []byte("\n\n")}
	assert.Equal(t, "first out", res.FirstLine())

	res.Stderr = []byte("Error: boom\nmore")
	assert.Equal(t, "Error: boom", res.FirstLine())

	assert.Equal(t, "", (&Result{}).FirstLine())
}
