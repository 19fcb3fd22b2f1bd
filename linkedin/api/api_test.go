package api

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"

	"github.com/llget/lldl/errs"
	"github.com/llget/lldl/linkedin/auth"
	"github.com/llget/lldl/pkg/client"
)

const courseJSON = `{"elements":[{
	"title":"Go Basics",
	"slug":"go-basics",
	"description":"desc",
	"fullCourseUnlocked":true,
	"chapters":[{"title":"Intro","videos":[{"title":"Welcome","slug":"welcome"}]}],
	"exerciseFiles":[{"name":"ex.zip","url":"https://cdn.example.com/ex.zip"}]
}]}`

const videoJSON = `{"elements":[{"selectedVideo":{
	"url":{"progressiveUrl":"https://cdn.example.com/v.mp4"},
	"transcript":{"lines":[{"transcriptStartAt":0,"caption":"hi"},{"transcriptStartAt":1000,"caption":"there"}]},
	"durationInSeconds":90
}}]}`

func newTestSession(t *testing.T) *auth.Session {
	t.Helper()
	c, err := client.New()
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	return &auth.Session{Client: c, Headers: map[string]string{"Csrf-Token": "ajax:1"}}
}

func withBaseURL(t *testing.T, url string) {
	t.Helper()
	old := baseURL
	baseURL = url
	t.Cleanup(func() { baseURL = old })
}

func TestCourseDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/learning-api/detailedCourses" {
			t.Errorf("got path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("courseSlug") != "go-basics" || q.Get("q") != "slugs" {
			t.Errorf("got query %q", r.URL.RawQuery)
		}
		if q.Get("addParagraphsToTranscript") != "true" {
			t.Errorf("got addParagraphsToTranscript %q", q.Get("addParagraphsToTranscript"))
		}
		if r.Header.Get("Csrf-Token") != "ajax:1" {
			t.Errorf("got Csrf-Token %q", r.Header.Get("Csrf-Token"))
		}
		// Only codings the client can decode may be advertised.
		if ae := r.Header.Get("Accept-Encoding"); ae != "gzip, br" {
			t.Errorf("got Accept-Encoding %q", ae)
		}
		fmt.Fprint(w, courseJSON)
	}))
	defer server.Close()
	withBaseURL(t, server.URL)

	element, err := New(newTestSession(t)).CourseDetail(context.Background(), "go-basics")
	if err != nil {
		t.Fatalf("CourseDetail: %v", err)
	}
	if element.Title != "Go Basics" || !element.FullCourseUnlocked {
		t.Errorf("got %+v", element)
	}
	if len(element.Chapters) != 1 || len(element.Chapters[0].Videos) != 1 {
		t.Fatalf("got chapters %+v", element.Chapters)
	}
	if element.ExerciseFiles[0].URL != "https://cdn.example.com/ex.zip" {
		t.Errorf("got exercise url %q", element.ExerciseFiles[0].URL)
	}
}

func TestCourseDetail_NoElements(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"elements":[]}`)
	}))
	defer server.Close()
	withBaseURL(t, server.URL)

	_, err := New(newTestSession(t)).CourseDetail(context.Background(), "gone")
	if !errors.Is(err, errs.ErrCourseNotFound) {
		t.Fatalf("got %v, want ErrCourseNotFound", err)
	}
}

func TestResolveVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("resolution") != "_720" {
			t.Errorf("got resolution %q", q.Get("resolution"))
		}
		if q.Get("videoSlug") != "welcome" || q.Get("addParagraphsToTranscript") != "false" {
			t.Errorf("got query %q", r.URL.RawQuery)
		}
		fmt.Fprint(w, videoJSON)
	}))
	defer server.Close()
	withBaseURL(t, server.URL)

	media, err := New(newTestSession(t)).ResolveVideo(context.Background(), "go-basics", "welcome")
	if err != nil {
		t.Fatalf("ResolveVideo: %v", err)
	}
	if media.URL != "https://cdn.example.com/v.mp4" {
		t.Errorf("got url %q", media.URL)
	}
	if media.DurationMs != 90000 {
		t.Errorf("got duration %d", media.DurationMs)
	}
	if len(media.Transcript) != 2 || media.Transcript[1].StartAt != 1000 {
		t.Errorf("got transcript %+v", media.Transcript)
	}
}

func TestResolveVideo_RetryThenSuccess(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, videoJSON)
	}))
	defer server.Close()
	withBaseURL(t, server.URL)

	media, err := New(newTestSession(t)).ResolveVideo(context.Background(), "c", "v")
	if err != nil {
		t.Fatalf("ResolveVideo: %v", err)
	}
	if media.URL == "" {
		t.Error("expected resolved media after retries")
	}
	if requests != 3 {
		t.Errorf("got %d requests, want 3", requests)
	}
}

func TestResolveVideo_RetriesExhausted(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	withBaseURL(t, server.URL)

	_, err := New(newTestSession(t)).ResolveVideo(context.Background(), "c", "v")
	if !errors.Is(err, errs.ErrVideoUnavailable) {
		t.Fatalf("got %v, want ErrVideoUnavailable", err)
	}
	if requests != 3 {
		t.Errorf("got %d requests, want 3", requests)
	}
}

func TestResolveVideo_NonStatusErrorAborts(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, `{not json`)
	}))
	defer server.Close()
	withBaseURL(t, server.URL)

	_, err := New(newTestSession(t)).ResolveVideo(context.Background(), "c", "v")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, errs.ErrVideoUnavailable) {
		t.Fatal("a parse failure is not an unavailable video")
	}
	if requests != 1 {
		t.Errorf("got %d requests, want 1 (no retry on non-status errors)", requests)
	}
}

func TestResolveVideo_MissingURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Locked course: selectedVideo carries a transcript but no URL.
		fmt.Fprint(w, `{"elements":[{"selectedVideo":{"durationInSeconds":10}}]}`)
	}))
	defer server.Close()
	withBaseURL(t, server.URL)

	_, err := New(newTestSession(t)).ResolveVideo(context.Background(), "c", "v")
	if !errors.Is(err, errs.ErrVideoUnavailable) {
		t.Fatalf("got %v, want ErrVideoUnavailable", err)
	}
}

func TestResolveVideo_NoTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"elements":[{"selectedVideo":{
			"url":{"progressiveUrl":"https://cdn.example.com/v.mp4"},
			"durationInSeconds":10}}]}`)
	}))
	defer server.Close()
	withBaseURL(t, server.URL)

	media, err := New(newTestSession(t)).ResolveVideo(context.Background(), "c", "v")
	if err != nil {
		t.Fatalf("ResolveVideo: %v", err)
	}
	if media.Transcript != nil {
		t.Errorf("got transcript %+v", media.Transcript)
	}
}

func TestGetJSON_Brotli(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		fmt.Fprint(bw, courseJSON)
		_ = bw.Close()
	}))
	defer server.Close()
	withBaseURL(t, server.URL)

	element, err := New(newTestSession(t)).CourseDetail(context.Background(), "go-basics")
	if err != nil {
		t.Fatalf("CourseDetail: %v", err)
	}
	if element.Title != "Go Basics" {
		t.Errorf("got %q", element.Title)
	}
}

func TestGetJSON_Gzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gw := gzip.NewWriter(w)
		fmt.Fprint(gw, courseJSON)
		_ = gw.Close()
	}))
	defer server.Close()
	withBaseURL(t, server.URL)

	element, err := New(newTestSession(t)).CourseDetail(context.Background(), "go-basics")
	if err != nil {
		t.Fatalf("CourseDetail: %v", err)
	}
	if element.Title != "Go Basics" {
		t.Errorf("got %q", element.Title)
	}
}
