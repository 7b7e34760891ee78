package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/makeaparody/api/internal/client"
	"github.com/makeaparody/api/internal/model"
)

// Poll defaults: one query every 10 seconds, at most 60 of them.
const (
	DefaultPollInterval = 10 * time.Second
	DefaultPollMaxTicks = 60
)

// StatusSource answers one status query for a task
type StatusSource interface {
	GetMusicStatus(ctx context.Context, taskID string) (*client.MusicStatus, error)
}

// TickFunc observes the remote status seen on each tick
type TickFunc func(tick int, status string)

// Poller waits for a music task to reach a terminal state
type Poller struct {
	source   StatusSource
	interval time.Duration
	maxTicks int
	onTick   TickFunc
}

// NewPoller creates a poller; non-positive values fall back to the defaults
func NewPoller(source StatusSource, interval time.Duration, maxTicks int) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxTicks <= 0 {
		maxTicks = DefaultPollMaxTicks
	}
	return &Poller{
		source:   source,
		interval: interval,
		maxTicks: maxTicks,
	}
}

// WithTick returns a copy of the poller that reports every observed status
func (p *Poller) WithTick(fn TickFunc) *Poller {
	cp := *p
	cp.onTick = fn
	return &cp
}

// Budget is the longest PollUntilDone can run
func (p *Poller) Budget() time.Duration {
	return p.interval * time.Duration(p.maxTicks)
}

// PollUntilDone sleeps one interval before each query and returns the first
// track's audio URL as soon as the task succeeds. A failed task yields a
// *model.JobFailedError, an exhausted budget yields model.ErrTimeout and a
// cancelled ctx yields ctx.Err(). The remote task is never cancelled.
func (p *Poller) PollUntilDone(ctx context.Context, taskID string) (string, error) {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for tick := 1; tick <= p.maxTicks; tick++ {
		select {
		case <-ctx.Done():
			log.Printf("[Suno API] Poll music (task=%s) — context cancelled", taskID)
			return "", ctx.Err()
		case <-timer.C:
		}

		status, err := p.source.GetMusicStatus(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			log.Printf("[Suno API] Poll music #%d (task=%s) — error: %v", tick, taskID, err)
			return "", err
		}

		log.Printf("[Suno API] Poll music #%d (task=%s) — status: %s", tick, taskID, status.Status)
		if p.onTick != nil {
			p.onTick(tick, status.Status)
		}

		switch {
		case status.IsSuccess():
			tracks := status.Tracks()
			if len(tracks) == 0 {
				return "", &model.JobFailedError{
					TaskID:  taskID,
					Status:  status.Status,
					Message: "music generation finished without any tracks",
				}
			}
			audioURL := trackAudioURL(tracks[0])
			if audioURL == "" {
				return "", &model.JobFailedError{
					TaskID:  taskID,
					Status:  status.Status,
					Message: "music generation finished without an audio URL",
				}
			}
			return audioURL, nil
		case status.IsFailed():
			msg := status.ErrorMessage
			if msg == "" {
				msg = status.Status
			}
			return "", &model.JobFailedError{
				TaskID:  taskID,
				Status:  status.Status,
				Message: msg,
			}
		}

		timer.Reset(p.interval)
	}

	return "", fmt.Errorf("%w: task %s not finished after %d checks (%v)", model.ErrTimeout, taskID, p.maxTicks, p.Budget())
}
