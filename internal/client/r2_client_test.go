package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/makeaparody/api/internal/config"
)

func TestR2Put(t *testing.T) {
	var (
		method, path, contentType, cacheControl, taskMeta string
		body                                              []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		contentType = r.Header.Get("Content-Type")
		cacheControl = r.Header.Get("Cache-Control")
		taskMeta = r.Header.Get("X-Amz-Meta-Task-Id")
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewR2Client(&config.R2Config{
		AccountID:       "acct",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "parodies",
		PublicURL:       "https://cdn.makeaparody.test/",
		Endpoint:        srv.URL,
	})
	if err != nil {
		t.Fatalf("NewR2Client() error: %v", err)
	}

	url, err := c.Put(context.Background(), StoredObject{
		Key:         "parodies/task-1.mp3",
		Data:        []byte("ID3-fake"),
		ContentType: "audio/mpeg",
		Metadata:    map[string]string{"task-id": "task-1"},
	})
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	if url != "https://cdn.makeaparody.test/parodies/task-1.mp3" {
		t.Errorf("url = %q", url)
	}
	if method != http.MethodPut || path != "/parodies/parodies/task-1.mp3" {
		t.Errorf("request = %s %s", method, path)
	}
	if string(body) != "ID3-fake" {
		t.Errorf("body = %q", body)
	}
	if contentType != "audio/mpeg" || cacheControl != archiveCacheControl {
		t.Errorf("content-type = %q cache-control = %q", contentType, cacheControl)
	}
	if taskMeta != "task-1" {
		t.Errorf("task metadata = %q", taskMeta)
	}
}

func TestR2IncompleteConfig(t *testing.T) {
	if _, err := NewR2Client(&config.R2Config{AccountID: "acct", AccessKeyID: "key"}); err == nil {
		t.Fatal("expected error for missing secret and bucket")
	}
}

func TestR2URLWithoutPublicDomain(t *testing.T) {
	c := &R2Client{accountID: "acct", bucketName: "parodies"}
	if got := c.URL("a.mp3"); got != "https://acct.r2.cloudflarestorage.com/parodies/a.mp3" {
		t.Errorf("URL() = %q", got)
	}
}
