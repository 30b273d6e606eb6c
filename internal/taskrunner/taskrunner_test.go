package taskrunner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"soundbed/internal/service"
	"soundbed/internal/types"
)

func TestSubmitRequiresMediaSrc(t *testing.T) {
	r := New(&service.Service{}, DefaultConfig())
	defer r.Close()

	err := r.SubmitBgmTask(types.BgmTaskPayload{TaskID: "t1"})
	assert.Error(t, err)
	assert.Zero(t, r.Pending())
}

func TestSubmitAfterCloseFails(t *testing.T) {
	r := New(&service.Service{}, DefaultConfig())
	r.Close()

	err := r.SubmitBgmTask(types.BgmTaskPayload{TaskID: "t1", MediaSrc: "a.wav"})
	assert.ErrorIs(t, err, ErrRunnerStopped)
}

func TestNormalizeConfigDefaults(t *testing.T) {
	cfg := normalizeConfig(Config{})
	assert.Equal(t, defaultQueueSize, cfg.QueueSize)
	assert.Equal(t, defaultConcurrency, cfg.Concurrency)
}

func TestCloseIsIdempotent(t *testing.T) {
	r := New(&service.Service{}, Config{QueueSize: 1, Concurrency: 1})
	r.Close()
	r.Close()
}

func TestDrainWithNothingSubmitted(t *testing.T) {
	r := New(&service.Service{}, Config{QueueSize: 1, Concurrency: 1})
	defer r.Close()

	// Rejected submissions must not leave Drain waiting.
	_ = r.SubmitBgmTask(types.BgmTaskPayload{TaskID: "t1"})
	r.Drain()
}
