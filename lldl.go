// Package lldl downloads LinkedIn Learning courses: it authenticates once,
// materializes each configured course tree, and fetches every video,
// subtitle track, and exercise file under a process-wide concurrency cap.
// Runs are idempotent; anything already on disk is skipped, so an
// interrupted run is simply rerun.
package lldl

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/llget/lldl/downloader"
	"github.com/llget/lldl/internal/logger"
	"github.com/llget/lldl/linkedin/api"
	"github.com/llget/lldl/linkedin/auth"
	"github.com/llget/lldl/pkg/client"
)

const (
	defaultConcurrency = 1
	defaultOutputRoot  = "downloads"
)

// Options contains configuration for a download run.
//
// Use chainable setters on Downloader to populate these options.
type Options struct {
	Concurrency  int
	OutputRoot   string
	ProxyURL     string
	HTTPTimeout  time.Duration
	ProgressFunc func(downloader.Progress)
}

// Downloader provides the high-level API for fetching whole courses.
type Downloader struct {
	options Options
}

// New creates a new Downloader instance with default options.
func New() *Downloader {
	return &Downloader{options: Options{
		Concurrency: defaultConcurrency,
		OutputRoot:  defaultOutputRoot,
	}}
}

// WithConcurrency sets the global transfer budget shared by all courses in a
// run. Values below 1 fall back to 1.
func (d *Downloader) WithConcurrency(n int) *Downloader {
	if n < 1 {
		n = defaultConcurrency
	}
	d.options.Concurrency = n
	return d
}

// WithOutputRoot sets the directory course trees are written under.
func (d *Downloader) WithOutputRoot(root string) *Downloader {
	if root != "" {
		d.options.OutputRoot = root
	}
	return d
}

// WithProxy routes every request of the run through the given proxy URL.
func (d *Downloader) WithProxy(proxyURL string) *Downloader {
	d.options.ProxyURL = proxyURL
	return d
}

// WithHTTPTimeout sets the timeout for metadata requests. Media streaming is
// bounded separately by the downloader's coarse transfer deadline.
func (d *Downloader) WithHTTPTimeout(timeout time.Duration) *Downloader {
	d.options.HTTPTimeout = timeout
	return d
}

// WithProgress registers a callback that receives streaming progress updates.
func (d *Downloader) WithProgress(f func(downloader.Progress)) *Downloader {
	d.options.ProgressFunc = f
	return d
}

// FetchCourses authenticates and downloads every listed course, running the
// per-course batches concurrently over one shared slot budget. It returns
// after every work item has terminated. Per-item failures are logged and
// skipped; only authentication and top-level connection failures surface as
// an error.
func (d *Downloader) FetchCourses(ctx context.Context, username, password string, courseSlugs []string) error {
	appLog := logger.WithComponent(logger.ComponentApp)

	c, err := client.NewWith(client.Config{
		Timeout:  d.options.HTTPTimeout,
		ProxyURL: d.options.ProxyURL,
	})
	if err != nil {
		return fmt.Errorf("build http client: %w", err)
	}

	appLog.Info("------------- login -------------")
	session, err := auth.Login(ctx, c, username, password)
	if err != nil {
		return err
	}
	appLog.Info("------------- done -------------")

	f := &fetcher{
		api:   api.New(session),
		dl:    downloader.New(c.StreamClient(), session.Headers, c.UserAgent, d.options.ProgressFunc),
		root:  d.options.OutputRoot,
		slots: semaphore.NewWeighted(int64(d.options.Concurrency)),
		log:   logger.WithComponent(logger.ComponentFetch),
	}

	appLog.Info("------------- fetching courses -------------")
	g, ctx := errgroup.WithContext(ctx)
	for _, slug := range courseSlugs {
		slug := slug
		g.Go(func() error {
			return f.fetchCourse(ctx, slug)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	appLog.Info("------------- done -------------")
	return nil
}
