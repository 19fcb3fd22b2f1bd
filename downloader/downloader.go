// Package downloader streams remote payloads to disk. Writes go through a
// temporary file that is renamed into place on success and removed on any
// failure, so a file at the target path always implies a complete transfer.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/llget/lldl/internal/logger"
)

const (
	temporaryFileSuffix = ".tmp"
	copyBufferSizeBytes = 32 * 1024

	// transferTimeout is the single coarse ceiling on one raw transfer.
	transferTimeout = time.Hour
)

// Progress holds information about download progress.
type Progress struct {
	TotalSize      int64
	DownloadedSize int64
	Percent        float64
}

// Downloader streams media files to disk using the authenticated client.
type Downloader struct {
	Client       *http.Client
	Headers      map[string]string
	UserAgent    string
	ProgressFunc func(Progress)

	log *logger.ComponentLogger
}

// New creates a downloader. If client is nil, a default http.Client is used.
func New(client *http.Client, headers map[string]string, userAgent string, progressFunc func(Progress)) *Downloader {
	if client == nil {
		client = &http.Client{}
	}
	return &Downloader{
		Client:       client,
		Headers:      headers,
		UserAgent:    userAgent,
		ProgressFunc: progressFunc,
		log:          logger.WithComponent(logger.ComponentDownloader),
	}
}

// Download streams urlStr into outputPath. The transfer runs under a coarse
// one-hour deadline; on any failure the partial output is deleted so a later
// run retries from scratch instead of trusting a truncated file.
func (d *Downloader) Download(ctx context.Context, urlStr, outputPath string) error {
	ctx, cancel := context.WithTimeout(ctx, transferTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return err
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}
	req.Header.Set("Accept", "*/*")
	for k, v := range d.Headers {
		req.Header.Set(k, v)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP status %d", resp.StatusCode)
	}

	tmpPath := outputPath + temporaryFileSuffix
	outFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	totalSize := resp.ContentLength
	d.log.Debug("streaming", map[string]any{"path": outputPath, "size": totalSize})

	if err := d.copyBody(resp.Body, outFile, totalSize); err != nil {
		_ = outFile.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := outFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close output file: %w", err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("finalize output file: %w", err)
	}
	return nil
}

func (d *Downloader) copyBody(body io.Reader, outFile *os.File, totalSize int64) error {
	buf := make([]byte, copyBufferSizeBytes)
	var downloaded int64
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := outFile.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write chunk: %w", werr)
			}
			downloaded += int64(n)
			if d.ProgressFunc != nil {
				p := Progress{TotalSize: totalSize, DownloadedSize: downloaded}
				if totalSize > 0 {
					p.Percent = float64(downloaded) / float64(totalSize) * 100
				}
				d.ProgressFunc(p)
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return fmt.Errorf("read response body: %w", rerr)
		}
	}
}
