package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/makeaparody/api/internal/client"
	"github.com/makeaparody/api/internal/model"
)

// MusicOptions are the user's choices for one music submission
type MusicOptions struct {
	Style       string
	Title       string
	VocalGender model.VocalGender
	Model       string
}

// MusicSubmitter hands a job to the music backend and returns its task ID
type MusicSubmitter interface {
	Submit(ctx context.Context, req *model.MusicJobRequest) (string, error)
}

// MusicService submits parody lyrics to the asynchronous music backend
type MusicService struct {
	generator    client.MusicGenerator
	callbackURL  string
	defaultModel string
}

// NewMusicService creates a new music service. callbackURL is sent with every
// job because the backend requires it; completion is found by polling.
func NewMusicService(generator client.MusicGenerator, callbackURL, defaultModel string) *MusicService {
	return &MusicService{
		generator:    generator,
		callbackURL:  callbackURL,
		defaultModel: defaultModel,
	}
}

// BuildMusicRequest packages a parody into a job request. It refuses to build
// one without parody text.
func BuildMusicRequest(parody *model.ParodyResult, opts MusicOptions) (*model.MusicJobRequest, error) {
	if parody == nil || strings.TrimSpace(parody.Text) == "" {
		return nil, fmt.Errorf("%w: generate parody lyrics first", model.ErrMissingInput)
	}

	gender := opts.VocalGender
	if gender == "" {
		gender = model.VocalGenderAny
	}

	return &model.MusicJobRequest{
		Lyrics:       parody.Text,
		StyleTags:    model.StyleTags(strings.TrimSpace(opts.Style), gender),
		Title:        strings.TrimSpace(opts.Title),
		VocalGender:  gender,
		CustomMode:   true,
		Instrumental: false,
		Model:        opts.Model,
	}, nil
}

// Submit sends the job and returns the remote task ID. Empty lyrics fail
// without a call.
func (s *MusicService) Submit(ctx context.Context, req *model.MusicJobRequest) (string, error) {
	if req == nil || strings.TrimSpace(req.Lyrics) == "" {
		return "", fmt.Errorf("%w: lyrics are required", model.ErrMissingInput)
	}

	modelName := req.Model
	if modelName == "" {
		modelName = s.defaultModel
	}

	taskID, err := s.generator.GenerateMusic(ctx, &client.GenerateMusicRequest{
		Prompt:       req.Lyrics,
		Style:        req.StyleTags,
		Title:        req.Title,
		CustomMode:   true,
		Instrumental: false,
		Model:        modelName,
		CallBackURL:  s.callbackURL,
	})
	if err != nil {
		return "", fmt.Errorf("music submission failed: %w", err)
	}
	return taskID, nil
}

// Status makes a single status query and maps it to the public shape
func (s *MusicService) Status(ctx context.Context, taskID string) (*model.MusicStatusResponse, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, fmt.Errorf("%w: task id is required", model.ErrMissingInput)
	}

	status, err := s.generator.GetMusicStatus(ctx, taskID)
	if err != nil {
		return nil, err
	}

	resp := &model.MusicStatusResponse{
		TaskID: status.TaskID,
		Status: status.Status,
	}
	for _, t := range status.Tracks() {
		resp.Tracks = append(resp.Tracks, model.Track{
			ID:       t.ID,
			Title:    t.Title,
			AudioURL: trackAudioURL(t),
			Duration: t.Duration,
			Tags:     t.Tags,
		})
	}
	if status.IsFailed() {
		resp.Error = status.ErrorMessage
		if resp.Error == "" {
			resp.Error = status.Status
		}
	}
	return resp, nil
}

func trackAudioURL(t client.SunoTrack) string {
	if t.AudioURL != "" {
		return t.AudioURL
	}
	return t.StreamAudioURL
}
