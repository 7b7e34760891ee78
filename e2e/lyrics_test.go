package e2e

import (
	"net/http"
	"strings"
	"testing"
)

func TestLyrics_Success(t *testing.T) {
	ta := setupApp(t)

	for _, path := range []string{"/lyrics", "/genius-lyrics"} {
		t.Run(path, func(t *testing.T) {
			resp, err := doRequest(ta.app, http.MethodGet, path+"?song=Bohemian+Rhapsody&artist=Queen", "", nil)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}

			assertStatus(t, resp, http.StatusOK)

			result := parseJSON(t, resp)
			if result["title"] != "Bohemian Rhapsody by Queen" {
				t.Errorf("unexpected title: %v", result["title"])
			}
			lyrics, _ := result["lyrics"].(string)
			if !strings.HasPrefix(lyrics, "[Intro]\n\nIs this the real life?") {
				t.Errorf("lyrics not normalized: %q", lyrics)
			}
			if strings.Contains(lyrics, "Contributors") {
				t.Errorf("excluded header leaked into lyrics: %q", lyrics)
			}
			if !strings.Contains(lyrics, "[Verse 1]\n\nMama, just killed a man") {
				t.Errorf("second block missing or not normalized: %q", lyrics)
			}
		})
	}
}

func TestLyrics_MissingSong(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/lyrics?artist=Queen", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
	assertErrorBody(t, parseJSON(t, resp))
}

func TestLyrics_NotFound(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/lyrics?song=Nonexistent+Song", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
	assertErrorBody(t, parseJSON(t, resp))
}
