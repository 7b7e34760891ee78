package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/makeaparody/api/internal/model"
)

type lyricsFunc func(ctx context.Context, q model.SongQuery) (*model.LyricsResult, error)

func (f lyricsFunc) FetchLyrics(ctx context.Context, q model.SongQuery) (*model.LyricsResult, error) {
	return f(ctx, q)
}

type instrumentalFunc func(ctx context.Context, q model.SongQuery) (*model.InstrumentalResult, error)

func (f instrumentalFunc) FindInstrumental(ctx context.Context, q model.SongQuery) (*model.InstrumentalResult, error) {
	return f(ctx, q)
}

type rewriteFunc func(ctx context.Context, req *model.ParodyRequest) (*model.ParodyResult, error)

func (f rewriteFunc) Rewrite(ctx context.Context, req *model.ParodyRequest) (*model.ParodyResult, error) {
	return f(ctx, req)
}

type submitFunc func(ctx context.Context, req *model.MusicJobRequest) (string, error)

func (f submitFunc) Submit(ctx context.Context, req *model.MusicJobRequest) (string, error) {
	return f(ctx, req)
}

type pollFunc func(ctx context.Context, taskID string) (string, error)

func (f pollFunc) PollUntilDone(ctx context.Context, taskID string) (string, error) {
	return f(ctx, taskID)
}

type archiveFunc func(ctx context.Context, taskID, audioURL string) (string, error)

func (f archiveFunc) Archive(ctx context.Context, taskID, audioURL string) (string, error) {
	return f(ctx, taskID, audioURL)
}

type recordingNotifier struct {
	mu     sync.Mutex
	states []State
}

func (n *recordingNotifier) Publish(snap Snapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.states = append(n.states, snap.State)
}

func (n *recordingNotifier) seen() []State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]State(nil), n.states...)
}

const testLyrics = "[Verse 1]\n\nIs this the real life?\n\n[Chorus]\n\nMama"

// happyDeps succeeds at every stage
func happyDeps() Deps {
	return Deps{
		Lyrics: lyricsFunc(func(ctx context.Context, q model.SongQuery) (*model.LyricsResult, error) {
			return &model.LyricsResult{
				Title:     q.Title + " by " + q.Artist,
				SourceURL: "https://genius.com/test-lyrics",
				Text:      testLyrics,
			}, nil
		}),
		Instrumental: instrumentalFunc(func(ctx context.Context, q model.SongQuery) (*model.InstrumentalResult, error) {
			return &model.InstrumentalResult{VideoID: "vid123", Title: q.Title + " instrumental"}, nil
		}),
		Rewriter: rewriteFunc(func(ctx context.Context, req *model.ParodyRequest) (*model.ParodyResult, error) {
			return &model.ParodyResult{Text: "[Verse 1]\n\nIs this the cat food?\n\n[Chorus]\n\nMeow"}, nil
		}),
		Music: submitFunc(func(ctx context.Context, req *model.MusicJobRequest) (string, error) {
			return "task-1", nil
		}),
		Poller: pollFunc(func(ctx context.Context, taskID string) (string, error) {
			return "https://cdn.example.com/" + taskID + ".mp3", nil
		}),
	}
}

// lyricsReady drives a new controller to LyricsReady
func lyricsReady(t testing.TB, deps Deps) *Controller {
	t.Helper()
	ctrl := NewController("s1", deps)
	if _, err := ctrl.Search(context.Background(), model.NewSongQuery("Bohemian Rhapsody", "Queen")); err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if _, err := ctrl.Rewrite(context.Background(), "cats"); err != nil {
		t.Fatalf("Rewrite() error: %v", err)
	}
	return ctrl
}
