package model

import (
	"context"
	"sync"

	"github.com/veedubyou/stem-separator/src/server/internal/separation/entity"
	"github.com/veedubyou/stem-separator/src/shared/lib/cerr"
	"github.com/veedubyou/stem-separator/src/shared/lib/metrics"
	"golang.org/x/sync/semaphore"
)

func NewHandle(loader Loader, devices *DeviceResolver, maxConcurrentInference int64) *Handle {
	if maxConcurrentInference < 1 {
		maxConcurrentInference = 1
	}

	return &Handle{
		loader:  loader,
		devices: devices,
		slots:   semaphore.NewWeighted(maxConcurrentInference),
		loading: semaphore.NewWeighted(1),
	}
}

// Handle owns the one model instance of the process.
// The model is loaded on first use and kept until the process exits,
// a failed load leaves the handle empty so the next caller tries again.
type Handle struct {
	loader  Loader
	devices *DeviceResolver
	slots   *semaphore.Weighted

	// held for the whole load, waiters give up with their own context
	loading *semaphore.Weighted

	lock  sync.Mutex
	model Model
}

func (h *Handle) ensureLoaded(ctx context.Context) (Model, error) {
	if model := h.current(); model != nil {
		return model, nil
	}

	if err := h.loading.Acquire(ctx, 1); err != nil {
		return nil, cerr.Wrap(err).Error("Gave up waiting for the separation model to load")
	}
	defer h.loading.Release(1)

	if model := h.current(); model != nil {
		return model, nil
	}

	loaded, err := h.loader.Load(ctx)
	metrics.IncModelLoad(err == nil)
	if err != nil {
		return nil, cerr.Wrap(err).Error("Failed to load separation model")
	}

	h.lock.Lock()
	h.model = loaded
	h.lock.Unlock()

	return loaded, nil
}

func (h *Handle) current() Model {
	h.lock.Lock()
	defer h.lock.Unlock()

	return h.model
}

func (h *Handle) Loaded() bool {
	return h.current() != nil
}

// Accelerated reports whether inference runs on a gpu, without forcing a model load
func (h *Handle) Accelerated(ctx context.Context) bool {
	return h.devices.Resolve(ctx) == CUDA
}

// Separate waits for an inference slot, so requests beyond the limit queue up here
func (h *Handle) Separate(ctx context.Context, audioPath string) (entity.Separation, error) {
	model, err := h.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return nil, cerr.Wrap(err).Error("Gave up waiting for an inference slot")
	}
	defer h.slots.Release(1)

	metrics.InferenceStarted()
	defer metrics.InferenceFinished()

	separation, err := model.Separate(ctx, audioPath)
	if err != nil {
		return nil, cerr.Field("device", model.Device()).Wrap(err).Error("Inference failed")
	}

	if err := separation.Validate(); err != nil {
		return nil, cerr.Wrap(err).Error("Model returned an incomplete separation")
	}

	return separation, nil
}
