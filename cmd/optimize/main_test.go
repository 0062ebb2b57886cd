package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunPrintsBothBranches(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-spot", "100", "-vol", "0.3", "-rate", "0.03", "-target", "110", "-horizon", "0.25"}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("exit %d, stderr: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "call*") {
		t.Errorf("expected call to be marked best:\n%s", out)
	}
	if !strings.Contains(out, "put ") {
		t.Errorf("expected a put row:\n%s", out)
	}
}

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
		msg  string
	}{
		{"missing spot", []string{"-vol", "0.3", "-target", "110", "-horizon", "0.25"}, exitInvalidInput, "invalid input"},
		{"bad flag", []string{"-nope"}, exitInvalidInput, ""},
		{"bad config", []string{"-spot", "100", "-vol", "0.3", "-target", "110", "-horizon", "0.25", "-max-iterations", "0"}, exitInvalidInput, "invalid input"},
		{"infeasible", []string{"-spot", "0.000001", "-vol", "0.2", "-rate", "0.01", "-target", "0.000001", "-horizon", "0.01"}, exitInfeasible, "no contract"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != tt.code {
				t.Errorf("exit %d, want %d (stderr: %s)", code, tt.code, stderr.String())
			}
			if !strings.Contains(stderr.String(), tt.msg) {
				t.Errorf("stderr %q does not mention %q", stderr.String(), tt.msg)
			}
		})
	}
}
