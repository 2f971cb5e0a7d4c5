package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	domainAudio "planetary_hour_notifier/internal/domain/audio"
)

// CommandPlayer pipes the clip into an external player such as "aplay -q -"
// or "paplay". An empty command, or one that is not on PATH, leaves the
// player unavailable.
type CommandPlayer struct {
	name string
	args []string
	path string
}

func NewCommandPlayer(command string) *CommandPlayer {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return &CommandPlayer{}
	}
	p := &CommandPlayer{name: fields[0], args: fields[1:]}
	if resolved, err := exec.LookPath(p.name); err == nil {
		p.path = resolved
	}
	return p
}

func (p *CommandPlayer) Available() bool {
	return p.path != ""
}

func (p *CommandPlayer) Play(ctx context.Context, clip *domainAudio.Clip) error {
	if !p.Available() {
		return fmt.Errorf("player %q is not available", p.name)
	}
	cmd := exec.CommandContext(ctx, p.path, p.args...)
	cmd.Stdin = bytes.NewReader(clip.Raw)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w (%s)", p.name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
