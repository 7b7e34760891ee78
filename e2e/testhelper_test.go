package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/makeaparody/api/internal/client"
	"github.com/makeaparody/api/internal/config"
	"github.com/makeaparody/api/internal/handler"
	"github.com/makeaparody/api/internal/middleware"
	"github.com/makeaparody/api/internal/pipeline"
	"github.com/makeaparody/api/internal/server"
	"github.com/makeaparody/api/internal/service"
	ws "github.com/makeaparody/api/internal/websocket"
)

const songPage = `<html><body>
<div data-lyrics-container="true"><div data-exclude-from-selection="true">3 Contributors</div>Bohemian Rhapsody Lyrics[Intro]<br>Is this the real life?<br>Is this just fantasy?</div>
<div data-lyrics-container="true">[Verse 1]<br>Mama, just killed a man</div>
</body></html>`

// upstreams fakes every remote API the app talks to
type upstreams struct {
	server *httptest.Server

	mu           sync.Mutex
	sunoStatuses []string
	sunoFailMsg  string
	sunoPolls    int
	submitted    []map[string]interface{}
	rejectSubmit bool

	youtubeQueries []string
}

func newUpstreams(t *testing.T) *upstreams {
	t.Helper()
	u := &upstreams{sunoStatuses: []string{"PENDING", "SUCCESS"}}

	mux := http.NewServeMux()

	// Genius
	mux.HandleFunc("/genius/search", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("q"), "Nonexistent") {
			w.Write([]byte(`{"response":{"hits":[]}}`))
			return
		}
		fmt.Fprintf(w, `{"response":{"hits":[{"result":{"full_title":"Bohemian Rhapsody by Queen","url":"%s/genius/page"}}]}}`, u.server.URL)
	})
	mux.HandleFunc("/genius/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(songPage))
	})

	// YouTube
	mux.HandleFunc("/youtube/v3/search", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.youtubeQueries = append(u.youtubeQueries, r.URL.Query().Get("q"))
		u.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"nextPageToken":"NEXT","prevPageToken":"PREV","items":[
			{"id":{"kind":"youtube#video","videoId":"fJ9rUzIMcZQ"},"snippet":{"title":"Bohemian Rhapsody (Instrumental)","channelTitle":"Backing Tracks","publishedAt":"2019-05-06T07:08:09Z"}},
			{"id":{"kind":"youtube#video","videoId":"second"},"snippet":{"title":"Other"}}
		]}`))
	})

	// Groq
	mux.HandleFunc("/groq/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-e2e",
			"object": "chat.completion",
			"choices": []map[string]interface{}{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": "[Intro]\n\nIs this the real cat?\nIs this just catnip?"},
				"finish_reason": "stop",
			}},
		})
	})

	// Suno
	mux.HandleFunc("/suno/api/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)

		u.mu.Lock()
		defer u.mu.Unlock()
		if u.rejectSubmit {
			w.Write([]byte(`{"code":413,"msg":"Prompt length exceeds limit","data":null}`))
			return
		}
		u.submitted = append(u.submitted, body)
		fmt.Fprintf(w, `{"code":200,"msg":"success","data":{"taskId":"task-%d"}}`, len(u.submitted))
	})
	mux.HandleFunc("/suno/api/v1/generate/record-info", func(w http.ResponseWriter, r *http.Request) {
		taskID := r.URL.Query().Get("taskId")

		u.mu.Lock()
		i := u.sunoPolls
		if i >= len(u.sunoStatuses) {
			i = len(u.sunoStatuses) - 1
		}
		u.sunoPolls++
		st := u.sunoStatuses[i]
		failMsg := u.sunoFailMsg
		u.mu.Unlock()

		data := map[string]interface{}{"taskId": taskID, "status": st, "errorMessage": failMsg}
		if st == "SUCCESS" {
			data["response"] = map[string]interface{}{"sunoData": []map[string]interface{}{
				{"id": "t1", "audioUrl": "https://cdn.example.com/" + taskID + ".mp3", "title": "Cat Rhapsody", "tags": "rock", "duration": 201.3},
			}}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 200, "msg": "success", "data": data})
	})

	u.server = httptest.NewServer(mux)
	t.Cleanup(u.server.Close)
	return u
}

func (u *upstreams) setSuno(statuses []string, failMsg string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.sunoStatuses = statuses
	u.sunoFailMsg = failMsg
	u.sunoPolls = 0
}

// testApp holds all components needed for testing
type testApp struct {
	app       *fiber.App
	upstreams *upstreams
}

// setupApp wires the app the same way main.go does, with every remote API
// replaced by a local fake.
func setupApp(t *testing.T) *testApp {
	t.Helper()
	return setupAppWith(t, nil)
}

// setupAppWith is setupApp with a hook to adjust the config before wiring.
func setupAppWith(t *testing.T, configure func(*config.Config)) *testApp {
	t.Helper()
	u := newUpstreams(t)

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: "0", PublicBaseURL: "https://parody.example.com"},
		RateLimit: config.RateLimitConfig{SearchPerMin: 10000, ParodyPerMin: 10000, MusicPerHour: 10000},
		Genius:    config.GeniusConfig{AccessToken: "genius-token", BaseURL: u.server.URL + "/genius"},
		YouTube:   config.YouTubeConfig{APIKey: "yt-key", Endpoint: u.server.URL + "/"},
		Groq:      config.GroqConfig{APIKey: "groq-key", BaseURL: u.server.URL + "/groq", Model: "llama-3.3-70b-versatile", MaxTokens: 2048},
		Suno:      config.SunoConfig{APIKey: "suno-key", BaseURL: u.server.URL + "/suno", Model: "V4", PollInterval: 5 * time.Millisecond, PollMaxTicks: 5},
	}

	if configure != nil {
		configure(cfg)
	}

	validate := validator.New()
	hub := ws.NewHub()
	go hub.Run()

	youtubeClient, err := client.NewYouTubeClient(context.Background(), &cfg.YouTube)
	if err != nil {
		t.Fatalf("youtube client: %v", err)
	}
	sunoClient := client.NewSunoClient(&cfg.Suno)

	lyricsService := service.NewLyricsService(client.NewGeniusClient(&cfg.Genius))
	instrumentalService := service.NewInstrumentalService(youtubeClient)
	parodyService := service.NewParodyService(client.NewGroqClient(&cfg.Groq))
	musicService := service.NewMusicService(sunoClient, cfg.CallbackURL(), cfg.Suno.Model)

	store := pipeline.NewStore(pipeline.Deps{
		Lyrics:       lyricsService,
		Instrumental: instrumentalService,
		Rewriter:     parodyService,
		Music:        musicService,
		Poller:       service.NewPoller(sunoClient, cfg.Suno.PollInterval, cfg.Suno.PollMaxTicks),
		Notifier:     hub,
	})
	t.Cleanup(store.CloseAll)

	app := server.New(cfg, server.Handlers{
		Lyrics:       handler.NewLyricsHandler(lyricsService),
		Instrumental: handler.NewInstrumentalHandler(instrumentalService),
		Parody:       handler.NewParodyHandler(parodyService, validate),
		Music:        handler.NewMusicHandler(musicService, validate),
		Session:      handler.NewSessionHandler(store, hub, validate),
		Health: func() fiber.Map {
			return fiber.Map{"genius": true, "youtube": true, "groq": true, "suno": true, "r2": false}
		},
	}, middleware.NewRateLimiter(nil))

	return &testApp{app: app, upstreams: u}
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// assertErrorBody checks the flat error envelope.
func assertErrorBody(t *testing.T, body map[string]interface{}) {
	t.Helper()
	if msg, ok := body["error"].(string); !ok || msg == "" {
		t.Errorf("expected string 'error' field, got %v", body)
	}
	if _, ok := body["code"].(string); !ok {
		t.Errorf("expected 'code' field, got %v", body)
	}
}
