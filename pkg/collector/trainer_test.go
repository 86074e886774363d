package collector

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestTrainer_RequiresCommand(t *testing.T) {
	logger := zerolog.Nop()
	trainer := NewTrainer(&logger, &TrainerConfig{Timeout: time.Minute})

	if err := trainer.Train(context.Background(), "features.csv"); err == nil {
		t.Error("expected error when no command is configured")
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"--epochs 10", 2},
		{"--epochs 10 --input", 3},
	}

	for _, tt := range tests {
		if got := splitArgs(tt.in); len(got) != tt.want {
			t.Errorf("splitArgs(%q) = %v, want %d args", tt.in, got, tt.want)
		}
	}
}
