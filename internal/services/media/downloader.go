// Package media downloads post videos and extracts their audio track for
// transcription.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"reelcheck/internal/services"
	"reelcheck/internal/verify"
)

const defaultDownloadTimeout = 120 * time.Second

// Downloader fetches a video to local disk and produces an mp3 alongside it.
type Downloader struct {
	mediaDir     string
	ffmpegBinary string
	httpClient   *http.Client
}

// NewDownloader builds a downloader writing under mediaDir. ffmpegBinary
// defaults to "ffmpeg" on PATH.
func NewDownloader(mediaDir, ffmpegBinary string, downloadTimeoutSeconds int) *Downloader {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	timeout := defaultDownloadTimeout
	if downloadTimeoutSeconds > 0 {
		timeout = time.Duration(downloadTimeoutSeconds) * time.Second
	}
	return &Downloader{
		mediaDir:     mediaDir,
		ffmpegBinary: ffmpegBinary,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Fetch downloads the video named by link and extracts its audio. Both
// paths are stable per filename, so a re-run with existing files skips the
// download and extraction entirely.
func (d *Downloader) Fetch(ctx context.Context, link verify.LinkInfo) (verify.MediaInfo, error) {
	var empty verify.MediaInfo

	if strings.TrimSpace(link.VideoURL) == "" || strings.TrimSpace(link.Filename) == "" {
		return empty, services.Wrap(services.ErrMedia, "media", "fetch", "video url and filename are required", nil)
	}
	if err := os.MkdirAll(d.mediaDir, 0o755); err != nil {
		return empty, services.Wrap(services.ErrMedia, "media", "fetch", "create media directory", err)
	}

	videoPath := filepath.Join(d.mediaDir, link.Filename)
	audioPath := audioPathFor(videoPath)

	if fileExists(videoPath) && fileExists(audioPath) {
		return verify.MediaInfo{VideoPath: videoPath, AudioPath: audioPath}, nil
	}

	if !fileExists(videoPath) {
		if err := d.download(ctx, link.VideoURL, videoPath); err != nil {
			return empty, err
		}
	}
	if !fileExists(audioPath) {
		if err := d.extractAudio(ctx, videoPath, audioPath); err != nil {
			return empty, err
		}
	}
	return verify.MediaInfo{VideoPath: videoPath, AudioPath: audioPath}, nil
}

func (d *Downloader) download(ctx context.Context, videoURL, videoPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return services.Wrap(services.ErrMedia, "media", "download", "build download request", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrMedia, "media", "download", "download video", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return services.Wrap(services.ErrMedia, "media", "download",
			fmt.Sprintf("video download returned status %d", resp.StatusCode), nil)
	}

	// Write to a temp name first so a partial download never looks complete.
	tmpPath := videoPath + ".part"
	out, err := os.Create(tmpPath)
	if err != nil {
		return services.Wrap(services.ErrMedia, "media", "download", "create video file", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return services.Wrap(services.ErrMedia, "media", "download", "write video file", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return services.Wrap(services.ErrMedia, "media", "download", "close video file", err)
	}
	if err := os.Rename(tmpPath, videoPath); err != nil {
		os.Remove(tmpPath)
		return services.Wrap(services.ErrMedia, "media", "download", "finalize video file", err)
	}
	return nil
}

func (d *Downloader) extractAudio(ctx context.Context, videoPath, audioPath string) error {
	cmd := exec.CommandContext(ctx, d.ffmpegBinary,
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		audioPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(audioPath)
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > 400 {
			detail = detail[len(detail)-400:]
		}
		return services.Wrap(services.ErrMedia, "media", "extract",
			fmt.Sprintf("ffmpeg audio extraction failed: %s", detail), err)
	}
	return nil
}

func audioPathFor(videoPath string) string {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	return base + ".mp3"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
