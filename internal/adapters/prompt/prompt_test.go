package prompt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/example/gemscreen/internal/ports/secondary"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  secondary.GateDecision
	}{
		{"yes", "y\n", secondary.GateContinue},
		{"yes word", "Yes\n", secondary.GateContinue},
		{"no", "n\n", secondary.GateQuit},
		{"empty line", "\n", secondary.GateQuit},
		{"eof", "", secondary.GateQuit},
		{"garbage", "maybe later\n", secondary.GateQuit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := New(strings.NewReader(tt.input), &out)

			got, err := p.Confirm(context.Background(), "Ligand added?")
			if err != nil {
				t.Fatalf("Confirm() returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "Ligand added?") {
				t.Error("prompt text was not printed")
			}
		})
	}
}

func TestAutoPrompter(t *testing.T) {
	p := &AutoPrompter{Decision: secondary.GateContinue}
	got, err := p.Confirm(context.Background(), "anything")
	if err != nil {
		t.Fatal(err)
	}
	if got != secondary.GateContinue {
		t.Errorf("AutoPrompter returned %v, want GateContinue", got)
	}
}
