package model

// ParodyRequest is built from the current lyrics plus the user's topic.
type ParodyRequest struct {
	SongTitle      string `json:"songTitle"`
	Artist         string `json:"artist"`
	OriginalLyrics string `json:"lyrics" validate:"required"`
	Topic          string `json:"parodyTopic" validate:"required"`
}

// ParodyResult holds the rewritten lyrics only.
type ParodyResult struct {
	Text string `json:"generatedParody"`
}

// ParodyGenerateResponse is the body of POST /parody-generate.
type ParodyGenerateResponse struct {
	OK              bool   `json:"ok"`
	GeneratedParody string `json:"generatedParody"`
}
