package collector

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// TrainerConfig describes the external model toolchain invocation. The
// toolchain itself (training algorithm, model format) lives outside
// this repository; the collector only hands it the feature file.
type TrainerConfig struct {
	// Command is the executable to run; empty disables training.
	Command string `env:"TRAINER_COMMAND,default="`
	// Args are passed before the feature file path, space separated.
	Args    string        `env:"TRAINER_ARGS,default="`
	WorkDir string        `env:"TRAINER_WORKDIR,default="`
	Timeout time.Duration `env:"TRAINER_TIMEOUT,default=30m"`
}

// Enabled reports whether a toolchain command is configured.
func (c *TrainerConfig) Enabled() bool { return c.Command != "" }

// Trainer shells out to the external ML toolchain after a training run.
type Trainer struct {
	cfg    *TrainerConfig
	logger *zerolog.Logger
}

func NewTrainer(logger *zerolog.Logger, cfg *TrainerConfig) *Trainer {
	return &Trainer{cfg: cfg, logger: logger}
}

// Train invokes the toolchain on the emitted feature file and waits for
// it to finish.
func (t *Trainer) Train(ctx context.Context, featuresPath string) error {
	if !t.cfg.Enabled() {
		return fmt.Errorf("no trainer command configured")
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	args := append(splitArgs(t.cfg.Args), featuresPath)
	cmd := exec.CommandContext(ctx, t.cfg.Command, args...)
	cmd.Dir = t.cfg.WorkDir

	t.logger.Info().
		Str("command", t.cfg.Command).
		Strs("args", args).
		Msg("Invoking model toolchain")

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("model toolchain failed: %w (output: %s)", err, strings.TrimSpace(string(output)))
	}

	t.logger.Info().
		Str("output", strings.TrimSpace(string(output))).
		Msg("Model toolchain finished")
	return nil
}

func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Fields(s)
}
