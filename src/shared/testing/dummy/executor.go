package dummy

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/veedubyou/stem-separator/src/shared/lib/executor"
	"github.com/veedubyou/stem-separator/src/shared/lib/wavfile"
)

var _ executor.Executor = &MediaExecutor{}

var stemNames = []string{"drums", "bass", "other", "vocals"}

type Call struct {
	Bin  string
	Args []string
	Dir  string
}

// MediaExecutor pretends to be ffmpeg, demucs and nvidia-smi by writing real wav files
type MediaExecutor struct {
	FFmpegUnavailable bool
	DemucsUnavailable bool
	DemucsMissing     bool
	GPUAvailable      bool
	Frames            int

	lock  sync.Mutex
	calls []Call
}

func NewMediaExecutor() *MediaExecutor {
	return &MediaExecutor{
		Frames: 441,
	}
}

func (m *MediaExecutor) Command(ctx context.Context, bin string, args ...string) executor.Command {
	return &mediaCommand{
		executor: m,
		ctx:      ctx,
		bin:      bin,
		args:     args,
	}
}

func (m *MediaExecutor) Calls() []Call {
	m.lock.Lock()
	defer m.lock.Unlock()

	return append([]Call{}, m.calls...)
}

func (m *MediaExecutor) CallsTo(binName string) []Call {
	matching := []Call{}
	for _, call := range m.Calls() {
		if filepath.Base(call.Bin) == binName {
			matching = append(matching, call)
		}
	}

	return matching
}

// SeparationCalls leaves out the availability check demucs gets on load
func (m *MediaExecutor) SeparationCalls() []Call {
	matching := []Call{}
	for _, call := range m.CallsTo("demucs") {
		if !hasArg(call.Args, "--help") {
			matching = append(matching, call)
		}
	}

	return matching
}

func (m *MediaExecutor) record(call Call) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.calls = append(m.calls, call)
}

type mediaCommand struct {
	executor *MediaExecutor
	ctx      context.Context
	bin      string
	args     []string
	dir      string
}

func (c *mediaCommand) SetDir(dir string) {
	c.dir = dir
}

func (c *mediaCommand) CombinedOutput() ([]byte, error) {
	c.executor.record(Call{Bin: c.bin, Args: c.args, Dir: c.dir})

	if err := c.ctx.Err(); err != nil {
		return nil, err
	}

	switch filepath.Base(c.bin) {
	case "ffmpeg":
		return c.runFFmpeg()
	case "demucs":
		return c.runDemucs()
	case "nvidia-smi":
		return c.runProbe()
	default:
		return []byte("command not found"), errors.Newf("unknown binary %s", c.bin)
	}
}

func (c *mediaCommand) runFFmpeg() ([]byte, error) {
	if c.executor.FFmpegUnavailable {
		return []byte("Invalid data found when processing input"), ProcessFailure
	}

	input, ok := argAfter(c.args, "-i")
	if !ok {
		return []byte("no input"), ProcessFailure
	}

	if _, err := os.Stat(input); err != nil {
		return []byte(input + ": No such file or directory"), ProcessFailure
	}

	output := c.args[len(c.args)-1]
	if err := writeTone(output, 220, c.executor.Frames); err != nil {
		return []byte(err.Error()), ProcessFailure
	}

	return []byte("size=44kB time=00:00:01.00"), nil
}

func (c *mediaCommand) runDemucs() ([]byte, error) {
	if c.executor.DemucsMissing {
		return []byte("demucs: not installed"), ProcessFailure
	}

	if hasArg(c.args, "--help") {
		return []byte("usage: demucs [-h] ..."), nil
	}

	if c.executor.DemucsUnavailable {
		return []byte("RuntimeError: CUDA out of memory"), ProcessFailure
	}

	model, _ := argAfter(c.args, "-n")
	outDir, ok := argAfter(c.args, "-o")
	if !ok {
		return []byte("no output dir"), ProcessFailure
	}

	template, ok := argAfter(c.args, "--filename")
	if !ok {
		template = "{track}/{stem}.{ext}"
	}

	input := c.args[len(c.args)-1]
	if _, err := os.Stat(input); err != nil {
		return []byte(input + ": No such file or directory"), ProcessFailure
	}

	track := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	for i, stem := range stemNames {
		fileName := strings.NewReplacer("{track}", track, "{stem}", stem, "{ext}", "wav").Replace(template)
		stemPath := filepath.Join(outDir, model, fileName)

		if err := os.MkdirAll(filepath.Dir(stemPath), os.ModePerm); err != nil {
			return []byte(err.Error()), ProcessFailure
		}

		if err := writeTone(stemPath, float64(110*(i+1)), c.executor.Frames); err != nil {
			return []byte(err.Error()), ProcessFailure
		}
	}

	return []byte("Separated tracks will be stored in " + outDir), nil
}

func (c *mediaCommand) runProbe() ([]byte, error) {
	if !c.executor.GPUAvailable {
		return []byte("NVIDIA-SMI has failed"), ProcessFailure
	}

	return []byte("GPU 0: Fake GPU (UUID: GPU-0)"), nil
}

func writeTone(path string, frequency float64, frames int) error {
	left := make([]float64, frames)
	for i := range left {
		left[i] = 0.5 * math.Sin(2*math.Pi*frequency*float64(i)/44100)
	}

	return wavfile.Encode(path, wavfile.Audio{
		Channels:   [][]float64{left, append([]float64{}, left...)},
		SampleRate: 44100,
	})
}

func argAfter(args []string, flag string) (string, bool) {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1], true
		}
	}

	return "", false
}

func hasArg(args []string, flag string) bool {
	for _, arg := range args {
		if arg == flag {
			return true
		}
	}

	return false
}
