package model

import (
	"strings"
	"time"
)

// SongQuery is the immutable input of the sourcing stage.
type SongQuery struct {
	Title  string `json:"title"`
	Artist string `json:"artist,omitempty"`
}

// NewSongQuery trims both fields.
func NewSongQuery(title, artist string) SongQuery {
	return SongQuery{
		Title:  strings.TrimSpace(title),
		Artist: strings.TrimSpace(artist),
	}
}

// SearchText joins title and artist the way the lyrics index expects.
func (q SongQuery) SearchText() string {
	if q.Artist == "" {
		return q.Title
	}
	return q.Title + " " + q.Artist
}

// LyricsResult is produced once per successful lyrics fetch.
type LyricsResult struct {
	Title     string `json:"title"`
	SourceURL string `json:"url"`
	Text      string `json:"lyrics"`
}

// InstrumentalResult is the top video match for a backing track.
type InstrumentalResult struct {
	VideoID      string    `json:"videoId"`
	Title        string    `json:"title"`
	ChannelTitle string    `json:"channelTitle"`
	PublishedAt  time.Time `json:"publishedAt"`
}
