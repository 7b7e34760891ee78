package service

import (
	"context"
	"sync"

	"google.golang.org/api/youtube/v3"

	"github.com/makeaparody/api/internal/client"
)

type fakeLyricsSource struct {
	hits      []client.GeniusHit
	blocks    []string
	searchErr error
	fetchErr  error

	searchCalls int
	searched    string
	fetchedURL  string
}

func (f *fakeLyricsSource) Search(ctx context.Context, query string) ([]client.GeniusHit, error) {
	f.searchCalls++
	f.searched = query
	return f.hits, f.searchErr
}

func (f *fakeLyricsSource) FetchLyricBlocks(ctx context.Context, pageURL string) ([]string, error) {
	f.fetchedURL = pageURL
	return f.blocks, f.fetchErr
}

type fakeTextGenerator struct {
	text   string
	err    error
	calls  int
	prompt string
}

func (f *fakeTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.text, f.err
}

type fakeMusicGenerator struct {
	taskID    string
	submitErr error
	submitted []*client.GenerateMusicRequest

	mu       sync.Mutex
	statuses []*client.MusicStatus
	queries  int
}

func (f *fakeMusicGenerator) GenerateMusic(ctx context.Context, req *client.GenerateMusicRequest) (string, error) {
	f.submitted = append(f.submitted, req)
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.taskID, nil
}

// GetMusicStatus replays statuses in order and repeats the last one
func (f *fakeMusicGenerator) GetMusicStatus(ctx context.Context, taskID string) (*client.MusicStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.queries
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	f.queries++
	st := *f.statuses[i]
	st.TaskID = taskID
	return &st, nil
}

func (f *fakeMusicGenerator) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries
}

func status(s string) *client.MusicStatus {
	return &client.MusicStatus{Status: s}
}

func successStatus(urls ...string) *client.MusicStatus {
	st := &client.MusicStatus{Status: client.SunoStatusSuccess}
	for i, u := range urls {
		st.Response.SunoData = append(st.Response.SunoData, client.SunoTrack{
			ID:       string(rune('a' + i)),
			AudioURL: u,
		})
	}
	return st
}

type fakeVideoSearcher struct {
	resp   *youtube.SearchListResponse
	err    error
	params []client.VideoSearchParams
}

func (f *fakeVideoSearcher) SearchVideos(ctx context.Context, p client.VideoSearchParams) (*youtube.SearchListResponse, error) {
	f.params = append(f.params, p)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func searchResult(ids ...string) *youtube.SearchListResponse {
	resp := &youtube.SearchListResponse{
		NextPageToken: "next",
		PrevPageToken: "prev",
	}
	for _, id := range ids {
		resp.Items = append(resp.Items, &youtube.SearchResult{
			Id: &youtube.ResourceId{Kind: "youtube#video", VideoId: id},
			Snippet: &youtube.SearchResultSnippet{
				Title:        id + " (Instrumental)",
				ChannelTitle: "Karaoke Channel",
				PublishedAt:  "2021-03-04T05:06:07Z",
			},
		})
	}
	return resp
}
