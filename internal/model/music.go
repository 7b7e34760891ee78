package model

import "fmt"

// VocalGender qualifies the style tags sent to the music backend.
type VocalGender string

const (
	VocalGenderAny    VocalGender = "any"
	VocalGenderMale   VocalGender = "male"
	VocalGenderFemale VocalGender = "female"
)

// ParseVocalGender maps free input to a VocalGender; unknown values become any.
func ParseVocalGender(s string) VocalGender {
	switch VocalGender(s) {
	case VocalGenderMale, VocalGenderFemale:
		return VocalGender(s)
	}
	return VocalGenderAny
}

// StyleTags appends the vocal qualifier to a style, e.g. "Pop with male vocals".
func StyleTags(style string, gender VocalGender) string {
	if gender == VocalGenderAny || gender == "" {
		return style
	}
	if style == "" {
		return fmt.Sprintf("%s vocals", gender)
	}
	return fmt.Sprintf("%s with %s vocals", style, gender)
}

// MusicJobRequest is what gets submitted to the music backend. CustomMode is
// always true and Instrumental always false.
type MusicJobRequest struct {
	Lyrics       string      `json:"lyrics"`
	StyleTags    string      `json:"styleTags"`
	Title        string      `json:"title"`
	VocalGender  VocalGender `json:"vocalGender"`
	CustomMode   bool        `json:"customMode"`
	Instrumental bool        `json:"instrumental"`
	Model        string      `json:"model,omitempty"`
}

// MusicJobStatus is the local view of one submission.
type MusicJobStatus string

const (
	MusicJobIdle    MusicJobStatus = "idle"
	MusicJobSending MusicJobStatus = "sending"
	MusicJobPolling MusicJobStatus = "polling"
	MusicJobSuccess MusicJobStatus = "success"
	MusicJobFailed  MusicJobStatus = "failed"
)

// MusicJob is created fresh for every submission. AudioURL is set only
// together with MusicJobSuccess.
type MusicJob struct {
	TaskID      string         `json:"taskId,omitempty"`
	Status      MusicJobStatus `json:"status"`
	AudioURL    string         `json:"audioUrl,omitempty"`
	ArchivedURL string         `json:"archivedUrl,omitempty"`
}

// Succeed records the audio reference and the terminal status together.
func (j *MusicJob) Succeed(audioURL string) {
	j.Status = MusicJobSuccess
	j.AudioURL = audioURL
}

// Fail moves the job to failed and drops any audio reference.
func (j *MusicJob) Fail() {
	j.Status = MusicJobFailed
	j.AudioURL = ""
}

// MusicGenerateRequest is the body of POST /music-generate.
type MusicGenerateRequest struct {
	Prompt       string `json:"prompt"`
	CustomMode   bool   `json:"customMode"`
	Style        string `json:"style" validate:"max=200"`
	Title        string `json:"title" validate:"max=120"`
	Instrumental bool   `json:"instrumental"`
	Model        string `json:"model"`
	VocalGender  string `json:"vocalGender" validate:"omitempty,oneof=any male female"`
}

// MusicGenerateResponse is the body returned after a successful submission.
type MusicGenerateResponse struct {
	Success bool   `json:"success"`
	TaskID  string `json:"taskId"`
}

// Track is one produced audio file.
type Track struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	AudioURL string  `json:"audioUrl"`
	Duration float64 `json:"duration"`
	Tags     string  `json:"tags"`
}

// MusicStatusResponse is the body of GET /music-status/:taskId.
type MusicStatusResponse struct {
	TaskID string  `json:"taskId"`
	Status string  `json:"status"`
	Tracks []Track `json:"tracks,omitempty"`
	Error  string  `json:"error,omitempty"`
}
