package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/llget/lldl"
	"github.com/llget/lldl/downloader"
	"github.com/llget/lldl/errs"
	"github.com/llget/lldl/internal/logger"
)

const (
	envUsername = "LLDL_USERNAME"
	envPassword = "LLDL_PASSWORD"
)

func main() {
	var (
		flagCourses     string
		flagOutput      string
		flagConcurrency int
		flagProxy       string
		flagUsername    string
		flagPassword    string
		flagTimeout     time.Duration
		flagNoProgress  bool
		flagVerbose     bool
	)

	flag.StringVar(&flagCourses, "courses", "", "Comma-separated course slugs to download")
	flag.StringVar(&flagOutput, "output", "downloads", "Output root directory")
	flag.IntVar(&flagConcurrency, "concurrency", 1, "Global limit on simultaneous transfers")
	flag.StringVar(&flagProxy, "proxy", "", "Proxy URL applied to every request (http/https)")
	flag.StringVar(&flagUsername, "username", "", "Account username (or "+envUsername+" env var)")
	flag.StringVar(&flagPassword, "password", "", "Account password (or "+envPassword+" env var)")
	flag.DurationVar(&flagTimeout, "http-timeout", 30*time.Second, "Timeout for metadata requests (e.g., 30s, 1m)")
	flag.BoolVar(&flagNoProgress, "no-progress", false, "Disable streaming progress output")
	flag.BoolVar(&flagVerbose, "verbose", false, "Enable debug logging for all components")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -courses <slug>[,<slug>...] [flags]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}

	flag.Parse()

	courses := splitCourses(flagCourses)
	if len(courses) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	username := flagUsername
	if username == "" {
		username = os.Getenv(envUsername)
	}
	password := flagPassword
	if password == "" {
		password = os.Getenv(envPassword)
	}
	if username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "Missing credentials: use -username/-password or the env vars")
		os.Exit(2)
	}

	if flagVerbose {
		verbose := logger.New(&logger.Config{Level: logger.DEBUG, Output: os.Stdout})
		verbose.EnableAll()
		logger.SetGlobalLogger(verbose)
	}

	d := lldl.New().
		WithConcurrency(flagConcurrency).
		WithOutputRoot(flagOutput).
		WithProxy(flagProxy).
		WithHTTPTimeout(flagTimeout)

	if !flagNoProgress && flagConcurrency == 1 {
		d = d.WithProgress(func(p downloader.Progress) {
			if p.TotalSize > 0 {
				fmt.Fprintf(os.Stdout, "Downloaded %.1f%%\r", p.Percent)
			}
		})
	}

	if err := d.FetchCourses(context.Background(), username, password, courses); err != nil {
		switch {
		case errors.Is(err, errs.ErrBadCredentials), errors.Is(err, errs.ErrLoginPageChanged):
			fmt.Fprintf(os.Stderr, "Login failed: %v\n", err)
		default:
			fmt.Fprintf(os.Stderr, "Fetch failed: %v\n", err)
		}
		os.Exit(1)
	}
}

func splitCourses(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
