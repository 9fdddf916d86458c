package ai

import (
	"strings"
	"testing"
)

func TestBuildPromptWithContext(t *testing.T) {
	prompt := buildPromptWithContext("what changed?", []string{
		"Note A\nbody a",
		"Note B\nbody b",
	})

	if !strings.Contains(prompt, "Context 1:\nNote A\nbody a") {
		t.Errorf("prompt missing first context block:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Context 2:\nNote B\nbody b") {
		t.Errorf("prompt missing second context block:\n%s", prompt)
	}
	if !strings.Contains(prompt, "what changed?") {
		t.Error("prompt missing the question")
	}
}

func TestBuildPromptWithoutContext(t *testing.T) {
	prompt := buildPromptWithContext("anything?", nil)

	if !strings.Contains(prompt, "No matching notes were found") {
		t.Errorf("empty-context prompt should mention missing notes:\n%s", prompt)
	}
	if !strings.Contains(prompt, "anything?") {
		t.Error("prompt missing the question")
	}
}
