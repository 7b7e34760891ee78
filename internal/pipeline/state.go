package pipeline

import (
	"time"

	"github.com/makeaparody/api/internal/model"
)

// State is the position of a session in the parody pipeline
type State string

const (
	StateIdle             State = "idle"
	StateSearchingSources State = "searching_sources"
	StateReady            State = "ready"
	StateGeneratingLyrics State = "generating_lyrics"
	StateLyricsReady      State = "lyrics_ready"
	StateSubmittingMusic  State = "submitting_music"
	StatePollingMusic     State = "polling_music"
	StateComplete         State = "complete"
	StateFailed           State = "failed"
)

// busy reports whether a request/response stage is in flight. Polling is
// not busy: a new trigger supersedes it.
func (s State) busy() bool {
	switch s {
	case StateSearchingSources, StateGeneratingLyrics, StateSubmittingMusic:
		return true
	}
	return false
}

// Snapshot is a copy of a session's state and per-stage results. Each stage
// keeps its own error so one failure never hides another stage's output.
type Snapshot struct {
	ID    string `json:"id"`
	State State  `json:"state"`

	Query             *model.SongQuery          `json:"query,omitempty"`
	Lyrics            *model.LyricsResult       `json:"lyrics,omitempty"`
	LyricsError       *model.StageError         `json:"lyricsError,omitempty"`
	Instrumental      *model.InstrumentalResult `json:"instrumental,omitempty"`
	InstrumentalError *model.StageError         `json:"instrumentalError,omitempty"`

	Topic       string              `json:"topic,omitempty"`
	Parody      *model.ParodyResult `json:"parody,omitempty"`
	ParodyError *model.StageError   `json:"parodyError,omitempty"`

	Music      *model.MusicJob   `json:"music,omitempty"`
	MusicError *model.StageError `json:"musicError,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// clone copies the mutable music job; every other result is replaced, never
// modified in place.
func (s Snapshot) clone() Snapshot {
	if s.Music != nil {
		job := *s.Music
		s.Music = &job
	}
	return s
}
