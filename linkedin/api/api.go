// Package api is the authenticated client for the learning API: course
// detail and video detail lookups, with transparent handling of compressed
// response bodies and a bounded retry on response-status failures.
package api

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/andybalholm/brotli"

	"github.com/llget/lldl/errs"
	"github.com/llget/lldl/internal/logger"
	"github.com/llget/lldl/linkedin/auth"
	"github.com/llget/lldl/types"
)

// baseURL is a var so tests can point the client at a local server.
var baseURL = "https://www.linkedin.com"

const (
	detailedCoursesPath = "/learning-api/detailedCourses"

	// targetResolution is the single rendition this tool fetches.
	targetResolution = "_720"

	// videoDetailAttempts bounds the metadata retry loop. Only non-2xx
	// statuses are retried, with no delay between attempts; any other error
	// aborts the loop immediately.
	videoDetailAttempts = 3
)

// Client issues authenticated JSON requests against the learning API.
type Client struct {
	session *auth.Session
	log     *logger.ComponentLogger
}

// New creates an API client on top of an authenticated session.
func New(session *auth.Session) *Client {
	return &Client{
		session: session,
		log:     logger.WithComponent(logger.ComponentAPI),
	}
}

// CourseElement is the raw course node of a detailedCourses response.
type CourseElement struct {
	Title              string                `json:"title"`
	Slug               string                `json:"slug"`
	Description        string                `json:"description"`
	FullCourseUnlocked bool                  `json:"fullCourseUnlocked"`
	Chapters           []ChapterElement      `json:"chapters"`
	ExerciseFiles      []ExerciseFileElement `json:"exerciseFiles"`
}

// ChapterElement is the raw chapter node of a course payload.
type ChapterElement struct {
	Title  string         `json:"title"`
	Videos []VideoElement `json:"videos"`
}

// VideoElement is the raw video node of a chapter payload.
type VideoElement struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// ExerciseFileElement is one downloadable attachment entry.
type ExerciseFileElement struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type courseDetailResponse struct {
	Elements []CourseElement `json:"elements"`
}

type videoDetailResponse struct {
	Elements []struct {
		SelectedVideo struct {
			URL struct {
				ProgressiveURL string `json:"progressiveUrl"`
			} `json:"url"`
			Transcript *struct {
				Lines []types.TranscriptLine `json:"lines"`
			} `json:"transcript"`
			DurationInSeconds int64 `json:"durationInSeconds"`
		} `json:"selectedVideo"`
	} `json:"elements"`
}

// Media is the resolved playback info of one video. Transcript is nil when
// the platform returned none; URL is always non-empty.
type Media struct {
	URL        string
	DurationMs int64
	Transcript []types.TranscriptLine
}

// CourseDetail fetches the full course description for a slug.
func (c *Client) CourseDetail(ctx context.Context, courseSlug string) (*CourseElement, error) {
	q := url.Values{}
	q.Set("fields", "fullCourseUnlocked,releasedOn,exerciseFileUrls,exerciseFiles")
	q.Set("addParagraphsToTranscript", "true")
	q.Set("courseSlug", courseSlug)
	q.Set("q", "slugs")

	var payload courseDetailResponse
	if err := c.getJSON(ctx, detailedCoursesPath+"?"+q.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("course detail %s: %w", courseSlug, err)
	}
	if len(payload.Elements) == 0 {
		return nil, fmt.Errorf("course detail %s: %w", courseSlug, errs.ErrCourseNotFound)
	}
	return &payload.Elements[0], nil
}

// ResolveVideo fetches playback metadata for one video at the fixed target
// resolution. A missing progressive URL (locked course, or all attempts spent
// on status failures) maps to errs.ErrVideoUnavailable so callers can skip
// the video without aborting siblings.
func (c *Client) ResolveVideo(ctx context.Context, courseSlug, videoSlug string) (*Media, error) {
	q := url.Values{}
	q.Set("addParagraphsToTranscript", "false")
	q.Set("courseSlug", courseSlug)
	q.Set("q", "slugs")
	q.Set("resolution", targetResolution)
	q.Set("videoSlug", videoSlug)
	path := detailedCoursesPath + "?" + q.Encode()

	var payload videoDetailResponse
	var lastErr error
	for attempt := 1; attempt <= videoDetailAttempts; attempt++ {
		lastErr = c.getJSON(ctx, path, &payload)
		if lastErr == nil {
			break
		}
		if !errs.IsStatus(lastErr) {
			return nil, fmt.Errorf("video detail %s/%s: %w", courseSlug, videoSlug, lastErr)
		}
		c.log.Debug("video detail retry", map[string]any{
			"video":   videoSlug,
			"attempt": attempt,
			"err":     lastErr,
		})
	}
	if lastErr != nil {
		// Attempt budget spent on status failures: treat as unavailable and
		// let the batch continue.
		return nil, fmt.Errorf("video detail %s/%s: %w", courseSlug, videoSlug, errs.ErrVideoUnavailable)
	}

	if len(payload.Elements) == 0 {
		return nil, fmt.Errorf("video detail %s/%s: %w", courseSlug, videoSlug, errs.ErrVideoUnavailable)
	}
	selected := payload.Elements[0].SelectedVideo
	if selected.URL.ProgressiveURL == "" {
		return nil, fmt.Errorf("video detail %s/%s: %w", courseSlug, videoSlug, errs.ErrVideoUnavailable)
	}

	media := &Media{
		URL:        selected.URL.ProgressiveURL,
		DurationMs: selected.DurationInSeconds * 1000,
	}
	if selected.Transcript != nil {
		media.Transcript = selected.Transcript.Lines
	}
	return media, nil
}

// getJSON performs one authenticated GET and decodes the JSON body, honoring
// the response Content-Encoding.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.session.Client.UserAgent)
	req.Header.Set("Accept", "*/*")
	// Advertise only the codings getJSON can decode.
	req.Header.Set("Accept-Encoding", "gzip, br")
	for k, v := range c.session.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.session.Client.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &errs.StatusError{URL: baseURL + path, StatusCode: resp.StatusCode}
	}

	var reader io.Reader = resp.Body
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("gzip reader: %w", err)
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
