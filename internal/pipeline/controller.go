package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/makeaparody/api/internal/model"
	"github.com/makeaparody/api/internal/service"
)

// JobPoller waits for a submitted music job to finish
type JobPoller interface {
	PollUntilDone(ctx context.Context, taskID string) (string, error)
}

// Archiver copies finished audio to storage we control
type Archiver interface {
	Archive(ctx context.Context, taskID, audioURL string) (string, error)
}

// Notifier receives every state change of a session
type Notifier interface {
	Publish(snap Snapshot)
}

// Deps are the stage implementations a controller drives. Archiver and
// Notifier are optional.
type Deps struct {
	Lyrics       service.LyricsFetcher
	Instrumental service.InstrumentalFinder
	Rewriter     service.LyricRewriter
	Music        service.MusicSubmitter
	Poller       JobPoller
	Archiver     Archiver
	Notifier     Notifier
}

// Controller sequences one session through search, rewrite, submission
// and polling.
type Controller struct {
	id   string
	deps Deps

	mu         sync.Mutex
	snap       Snapshot
	attempt    uint64
	cancelPoll context.CancelFunc
	pollDone   chan struct{}
}

// NewController creates an idle controller
func NewController(id string, deps Deps) *Controller {
	return &Controller{
		id:   id,
		deps: deps,
		snap: Snapshot{
			ID:        id,
			State:     StateIdle,
			UpdatedAt: time.Now().UTC(),
		},
	}
}

// ID returns the session ID
func (c *Controller) ID() string {
	return c.id
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.clone()
}

// Search looks up lyrics and an instrumental for the song. Both lookups run
// concurrently and settle independently; the session is Ready once both
// have finished, whatever their outcome.
func (c *Controller) Search(ctx context.Context, query model.SongQuery) (Snapshot, error) {
	query = model.NewSongQuery(query.Title, query.Artist)
	if query.Title == "" {
		return c.Snapshot(), fmt.Errorf("%w: song title is required", model.ErrMissingInput)
	}

	c.mu.Lock()
	if c.snap.State.busy() {
		snap := c.snap.clone()
		c.mu.Unlock()
		return snap, fmt.Errorf("%w: session is %s", model.ErrBusy, snap.State)
	}
	c.abandonPollLocked()
	c.snap = Snapshot{
		ID:    c.id,
		State: StateSearchingSources,
		Query: &query,
	}
	snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	var (
		lyrics       *model.LyricsResult
		lyricsErr    error
		instrumental *model.InstrumentalResult
		instErr      error
	)

	var g errgroup.Group
	g.Go(func() error {
		lyrics, lyricsErr = c.deps.Lyrics.FetchLyrics(ctx, query)
		return nil
	})
	g.Go(func() error {
		instrumental, instErr = c.deps.Instrumental.FindInstrumental(ctx, query)
		return nil
	})
	_ = g.Wait()

	if lyricsErr != nil {
		log.Printf("[Session %s] lyrics lookup failed: %v", c.id, lyricsErr)
	}
	if instErr != nil {
		log.Printf("[Session %s] instrumental lookup failed: %v", c.id, instErr)
	}

	c.mu.Lock()
	c.snap.Lyrics = lyrics
	c.snap.LyricsError = model.NewStageError(lyricsErr)
	c.snap.Instrumental = instrumental
	c.snap.InstrumentalError = model.NewStageError(instErr)
	c.snap.State = StateReady
	snap = c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	return snap, nil
}

// Rewrite turns the fetched lyrics into a parody about topic. A failed
// rewrite leaves the session where it was, with the error recorded.
func (c *Controller) Rewrite(ctx context.Context, topic string) (Snapshot, error) {
	topic = strings.TrimSpace(topic)

	c.mu.Lock()
	if c.snap.State.busy() {
		snap := c.snap.clone()
		c.mu.Unlock()
		return snap, fmt.Errorf("%w: session is %s", model.ErrBusy, snap.State)
	}
	if c.snap.Lyrics == nil || strings.TrimSpace(c.snap.Lyrics.Text) == "" {
		snap := c.snap.clone()
		c.mu.Unlock()
		return snap, fmt.Errorf("%w: search for lyrics first", model.ErrMissingInput)
	}
	if topic == "" {
		snap := c.snap.clone()
		c.mu.Unlock()
		return snap, fmt.Errorf("%w: parody topic is required", model.ErrMissingInput)
	}

	// A job being polled keeps running until the new parody exists
	prevState := c.snap.State

	req := &model.ParodyRequest{
		OriginalLyrics: c.snap.Lyrics.Text,
		Topic:          topic,
	}
	if c.snap.Query != nil {
		req.SongTitle = c.snap.Query.Title
		req.Artist = c.snap.Query.Artist
	}

	c.snap.State = StateGeneratingLyrics
	c.snap.ParodyError = nil
	snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	parody, err := c.deps.Rewriter.Rewrite(ctx, req)

	c.mu.Lock()
	if err != nil {
		log.Printf("[Session %s] parody generation failed: %v", c.id, err)
		c.snap.State = resumeState(prevState, c.snap.Music)
		c.snap.ParodyError = model.NewStageError(err)
		snap = c.commitLocked()
		c.mu.Unlock()
		c.notify(snap)
		return snap, err
	}

	// The previous music job belongs to the old parody
	c.abandonPollLocked()
	c.snap.Topic = topic
	c.snap.Parody = parody
	c.snap.Music = nil
	c.snap.MusicError = nil
	c.snap.State = StateLyricsReady
	snap = c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	return snap, nil
}

// GenerateMusic submits the current parody and starts polling in the
// background. Any job still being polled is abandoned first.
func (c *Controller) GenerateMusic(ctx context.Context, opts service.MusicOptions) (Snapshot, error) {
	c.mu.Lock()
	if c.snap.State.busy() {
		snap := c.snap.clone()
		c.mu.Unlock()
		return snap, fmt.Errorf("%w: session is %s", model.ErrBusy, snap.State)
	}

	req, err := service.BuildMusicRequest(c.snap.Parody, opts)
	if err != nil {
		snap := c.snap.clone()
		c.mu.Unlock()
		return snap, err
	}

	prevState := c.snap.State
	prevMusic := c.snap.Music
	if prevState == StatePollingMusic {
		prevState = StateLyricsReady
		prevMusic = nil
	}
	c.abandonPollLocked()
	attempt := c.attempt

	c.snap.State = StateSubmittingMusic
	c.snap.Music = &model.MusicJob{Status: model.MusicJobSending}
	c.snap.MusicError = nil
	snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	taskID, err := c.deps.Music.Submit(ctx, req)

	c.mu.Lock()
	if attempt != c.attempt {
		snap = c.snap.clone()
		c.mu.Unlock()
		return snap, fmt.Errorf("music submission superseded: %w", context.Canceled)
	}
	if err != nil {
		log.Printf("[Session %s] music submission failed: %v", c.id, err)
		c.snap.State = prevState
		c.snap.Music = prevMusic
		c.snap.MusicError = model.NewStageError(err)
		snap = c.commitLocked()
		c.mu.Unlock()
		c.notify(snap)
		return snap, err
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancelPoll = cancel
	c.pollDone = done
	c.snap.Music = &model.MusicJob{TaskID: taskID, Status: model.MusicJobPolling}
	c.snap.State = StatePollingMusic
	snap = c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	log.Printf("[Session %s] polling music task %s", c.id, taskID)
	go c.poll(pollCtx, cancel, done, attempt, taskID)

	return snap, nil
}

// poll runs one attempt's poll loop. Results are dropped if the attempt
// was superseded or cancelled while waiting.
func (c *Controller) poll(ctx context.Context, cancel context.CancelFunc, done chan struct{}, attempt uint64, taskID string) {
	defer close(done)
	defer cancel()

	audioURL, err := c.deps.Poller.PollUntilDone(ctx, taskID)

	c.mu.Lock()
	if attempt != c.attempt || ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	c.cancelPoll = nil
	// During a rewrite only the job is updated; the state is settled when
	// the rewrite finishes
	polling := c.snap.State == StatePollingMusic
	if err != nil {
		log.Printf("[Session %s] music task %s failed: %v", c.id, taskID, err)
		c.snap.Music.Fail()
		c.snap.MusicError = model.NewStageError(err)
		if polling {
			c.snap.State = StateFailed
		}
	} else {
		log.Printf("[Session %s] music task %s complete", c.id, taskID)
		c.snap.Music.Succeed(audioURL)
		if polling {
			c.snap.State = StateComplete
		}
	}
	snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	if err != nil || c.deps.Archiver == nil {
		return
	}

	archived, archiveErr := c.deps.Archiver.Archive(ctx, taskID, audioURL)
	if archiveErr != nil {
		log.Printf("[Session %s] archive of task %s failed: %v", c.id, taskID, archiveErr)
		return
	}

	c.mu.Lock()
	if attempt != c.attempt || c.snap.Music == nil || c.snap.Music.TaskID != taskID {
		c.mu.Unlock()
		return
	}
	c.snap.Music.ArchivedURL = archived
	snap = c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Cancel stops polling and forgets the job. The parody is kept.
func (c *Controller) Cancel() Snapshot {
	c.mu.Lock()
	if c.snap.State != StatePollingMusic {
		snap := c.snap.clone()
		c.mu.Unlock()
		return snap
	}
	c.abandonPollLocked()
	c.snap.Music = nil
	c.snap.MusicError = nil
	c.snap.State = StateLyricsReady
	snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	log.Printf("[Session %s] music polling cancelled", c.id)
	return snap
}

// Close abandons any background work. The controller must not be used
// afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	c.abandonPollLocked()
	c.mu.Unlock()
}

// Wait blocks until the current poll loop, if any, has finished.
func (c *Controller) Wait(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	done := c.pollDone
	c.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return c.Snapshot(), ctx.Err()
		}
	}
	return c.Snapshot(), nil
}

// resumeState is where a failed rewrite returns to. A job that was being
// polled may have finished in the meantime.
func resumeState(prev State, job *model.MusicJob) State {
	if prev != StatePollingMusic || job == nil {
		return prev
	}
	switch job.Status {
	case model.MusicJobSuccess:
		return StateComplete
	case model.MusicJobFailed:
		return StateFailed
	}
	return prev
}

// abandonPollLocked cancels the running poll loop and invalidates its
// attempt so a late result can never be written.
func (c *Controller) abandonPollLocked() {
	c.attempt++
	if c.cancelPoll != nil {
		c.cancelPoll()
		c.cancelPoll = nil
	}
}

func (c *Controller) commitLocked() Snapshot {
	c.snap.ID = c.id
	c.snap.UpdatedAt = time.Now().UTC()
	return c.snap.clone()
}

func (c *Controller) notify(snap Snapshot) {
	if c.deps.Notifier != nil {
		c.deps.Notifier.Publish(snap)
	}
}
