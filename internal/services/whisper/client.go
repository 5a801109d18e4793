// Package whisper talks to a Whisper ASR web service to transcribe and
// translate audio into English text.
package whisper

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reelcheck/internal/services"
)

const defaultHTTPTimeout = 300 * time.Second

// Client submits audio files for transcription.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a transcription client for the given ASR endpoint,
// e.g. http://127.0.0.1:9000/asr.
func NewClient(baseURL string, timeoutSeconds int) *Client {
	timeout := defaultHTTPTimeout
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSpace(baseURL),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Transcribe uploads the audio file and returns the spoken text, translated
// to English. An empty transcript is returned as-is; the caller decides
// whether that is fatal.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if c.baseURL == "" {
		return "", services.Wrap(services.ErrTranscription, "transcript", "transcribe", "transcriber url not configured", nil)
	}
	file, err := os.Open(audioPath)
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcript", "transcribe", "open audio file", err)
	}
	defer file.Close()

	pipeReader, pipeWriter := io.Pipe()
	writer := multipart.NewWriter(pipeWriter)
	go func() {
		part, err := writer.CreateFormFile("audio_file", filepath.Base(audioPath))
		if err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		pipeWriter.CloseWithError(writer.Close())
	}()

	values := url.Values{}
	values.Set("task", "translate")
	values.Set("output", "txt")
	endpoint := c.baseURL + "?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pipeReader)
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcript", "transcribe", "build transcription request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcript", "transcribe", "transcriber unreachable", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcript", "transcribe", "read transcription response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", services.Wrap(services.ErrTranscription, "transcript", "transcribe",
			fmt.Sprintf("transcriber returned status %d", resp.StatusCode), nil)
	}
	return strings.TrimSpace(string(body)), nil
}
