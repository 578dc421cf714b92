package executor

import (
	"context"
	"os/exec"
)

var _ Executor = BinaryFileExecutor{}

type Executor interface {
	Command(ctx context.Context, bin string, args ...string) Command
}

type Command interface {
	SetDir(dir string)
	CombinedOutput() ([]byte, error)
}

// BinaryFileExecutor runs real binaries on the host
type BinaryFileExecutor struct{}

func (BinaryFileExecutor) Command(ctx context.Context, bin string, args ...string) Command {
	return &binaryCommand{cmd: exec.CommandContext(ctx, bin, args...)}
}

type binaryCommand struct {
	cmd *exec.Cmd
}

func (b *binaryCommand) SetDir(dir string) {
	b.cmd.Dir = dir
}

func (b *binaryCommand) CombinedOutput() ([]byte, error) {
	return b.cmd.CombinedOutput()
}
