package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/makeaparody/api/internal/client"
)

// maxArchiveBytes caps a single downloaded track
const maxArchiveBytes = 64 << 20

// ArchiveService copies finished tracks from the music backend's CDN into
// our own bucket, since backend URLs expire.
type ArchiveService struct {
	storage    client.ObjectStore
	httpClient *http.Client
}

// NewArchiveService creates a new archive service
func NewArchiveService(storage client.ObjectStore) *ArchiveService {
	return &ArchiveService{
		storage: storage,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// ArchiveKey is the object key a task's audio is stored under
func ArchiveKey(taskID string) string {
	return fmt.Sprintf("parodies/%s.mp3", taskID)
}

// Archive downloads audioURL and uploads it, returning the public URL
func (s *ArchiveService) Archive(ctx context.Context, taskID, audioURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("audio download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) > maxArchiveBytes {
		return "", fmt.Errorf("audio exceeds %d bytes", maxArchiveBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	url, err := s.storage.Put(ctx, client.StoredObject{
		Key:         ArchiveKey(taskID),
		Data:        data,
		ContentType: contentType,
		Metadata: map[string]string{
			"task-id":    taskID,
			"source-url": audioURL,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive audio: %w", err)
	}

	log.Printf("[Archive] task %s stored at %s (%d bytes)", taskID, url, len(data))
	return url, nil
}
