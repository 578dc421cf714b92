package model

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/veedubyou/stem-separator/src/shared/lib/executor"
)

type Device string

const (
	CPU  Device = "cpu"
	CUDA Device = "cuda"
)

const probeTimeout = 10 * time.Second

func NewDeviceResolver(probeBinPath string, executor executor.Executor) *DeviceResolver {
	return &DeviceResolver{
		probeBinPath: probeBinPath,
		executor:     executor,
	}
}

// DeviceResolver asks the gpu probe once and remembers the answer for the life of the process.
// A probe that timed out is not remembered.
type DeviceResolver struct {
	probeBinPath string
	executor     executor.Executor

	lock     sync.Mutex
	resolved Device
}

func (d *DeviceResolver) Resolve(ctx context.Context) Device {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.resolved != "" {
		return d.resolved
	}

	device, conclusive := d.probe(ctx)
	if conclusive {
		d.resolved = device
	}

	return device
}

// probe ignores the caller's cancellation and is bounded by probeTimeout instead
func (d *DeviceResolver) probe(ctx context.Context) (Device, bool) {
	if d.probeBinPath == "" {
		return CPU, true
	}

	logger := log.WithField("probe_bin_path", d.probeBinPath)

	probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), probeTimeout)
	defer cancel()

	output, err := d.executor.Command(probeCtx, d.probeBinPath, "-L").CombinedOutput()
	if probeCtx.Err() != nil {
		logger.WithError(probeCtx.Err()).Warn("Accelerator probe timed out, using cpu for now")
		return CPU, false
	}

	if err != nil || strings.TrimSpace(string(output)) == "" {
		logger.WithField("probe_output", string(output)).Info("No accelerator found, using cpu")
		return CPU, true
	}

	logger.WithField("probe_output", strings.TrimSpace(string(output))).Info("Accelerator found, using cuda")
	return CUDA, true
}
