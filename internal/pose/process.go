package pose

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// ProcessSource runs an external pose estimation service and reads its
// newline-delimited JSON frames from stdout. The process is started lazily
// on the first call to Next.
type ProcessSource struct {
	name string
	args []string

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	stream  *StreamSource
	started bool
}

// NewProcessSource creates a source for the given command line.
func NewProcessSource(name string, args ...string) (*ProcessSource, error) {
	if name == "" {
		return nil, fmt.Errorf("pose command is empty")
	}
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("pose command %q not found: %w", name, err)
	}

	return &ProcessSource{name: name, args: args}, nil
}

// Next returns the next frame emitted by the service.
func (p *ProcessSource) Next(ctx context.Context) (Frame, error) {
	p.mu.Lock()
	if err := p.ensureStarted(); err != nil {
		p.mu.Unlock()
		return Frame{}, err
	}
	stream := p.stream
	p.mu.Unlock()

	return stream.Next(ctx)
}

// Close stops the service.
func (p *ProcessSource) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shutdown()
}

func (p *ProcessSource) ensureStarted() error {
	if p.started {
		return nil
	}

	p.cmd = exec.Command(p.name, p.args...)

	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Capture stderr for debugging
	p.cmd.Stderr = os.Stderr

	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start pose service: %w", err)
	}

	p.stdout = stdout
	p.stream = NewStreamSource(stdout)
	p.started = true

	return nil
}

func (p *ProcessSource) shutdown() error {
	if !p.started {
		return nil
	}

	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	err := p.cmd.Wait()

	p.started = false
	p.cmd = nil
	p.stdout = nil
	p.stream = nil

	if exitErr, ok := err.(*exec.ExitError); ok && !exitErr.Exited() {
		// Killed by us.
		return nil
	}
	return err
}
