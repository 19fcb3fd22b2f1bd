package lldl

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/llget/lldl/downloader"
	"github.com/llget/lldl/errs"
	"github.com/llget/lldl/internal/logger"
	"github.com/llget/lldl/linkedin/api"
	"github.com/llget/lldl/linkedin/catalog"
	"github.com/llget/lldl/subtitle"
	"github.com/llget/lldl/types"
)

// courseAPI is the slice of the API client the fetcher needs; tests swap in
// a fake to drive the scheduler without a server.
type courseAPI interface {
	CourseDetail(ctx context.Context, courseSlug string) (*api.CourseElement, error)
	ResolveVideo(ctx context.Context, courseSlug, videoSlug string) (*api.Media, error)
}

// transfer streams one URL to one target path.
type transfer interface {
	Download(ctx context.Context, urlStr, outputPath string) error
}

// fetcher drives all work items of a run. slots is the process-wide
// concurrency budget shared by every course's videos and exercises.
type fetcher struct {
	api   courseAPI
	dl    transfer
	root  string
	slots *semaphore.Weighted
	log   *logger.ComponentLogger
}

// fetchCourse materializes the course tree, creates every output directory
// up front, then fans the course's work items out under the global cap. It
// returns only after each work item terminated.
func (f *fetcher) fetchCourse(ctx context.Context, courseSlug string) error {
	element, err := f.api.CourseDetail(ctx, courseSlug)
	if err != nil {
		return err
	}
	course := catalog.BuildCourse(element)
	f.log.Info("fetching course", map[string]any{"course": course.Name})

	for _, chapter := range course.Chapters {
		if err := os.MkdirAll(ChapterDir(f.root, course, chapter), 0o755); err != nil {
			return err
		}
	}
	if len(course.Exercises) > 0 {
		if err := os.MkdirAll(ExercisesDir(f.root, course), 0o755); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, chapter := range course.Chapters {
		for _, video := range chapter.Videos {
			chapter, video := chapter, video
			g.Go(func() error {
				if err := f.slots.Acquire(ctx, 1); err != nil {
					return err
				}
				defer f.slots.Release(1)
				f.fetchVideo(ctx, course, chapter, video)
				return nil
			})
		}
	}
	for _, exercise := range course.Exercises {
		exercise := exercise
		g.Go(func() error {
			if err := f.slots.Acquire(ctx, 1); err != nil {
				return err
			}
			defer f.slots.Release(1)
			f.fetchExercise(ctx, course, exercise)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f.log.Info("finished fetching course", map[string]any{"course": course.Name})
	return nil
}

// fetchVideo retrieves one video and its subtitle track. Failures are logged
// and leave the item absent on disk; they never abort sibling work items.
func (f *fetcher) fetchVideo(ctx context.Context, course types.Course, chapter types.Chapter, video types.Video) {
	dir := ChapterDir(f.root, course, chapter)
	videoPath := filepath.Join(dir, video.Filename)
	subPath := subtitlePath(videoPath)

	videoExists := fileExists(videoPath)
	subExists := fileExists(subPath)
	if videoExists && subExists {
		return
	}

	fields := map[string]any{"course": course.Name, "chapter": chapter.Index, "video": video.Index}
	f.log.Info("fetching video", fields)

	media, err := f.api.ResolveVideo(ctx, course.Slug, video.Slug)
	if err != nil {
		if errors.Is(err, errs.ErrVideoUnavailable) {
			f.log.Warn("video unavailable, skipping", fields)
		} else {
			f.log.Error("resolve video failed", map[string]any{"video": video.Slug, "err": err})
		}
		return
	}

	if !videoExists {
		f.log.Info("writing " + video.Filename)
		if err := f.dl.Download(ctx, media.URL, videoPath); err != nil {
			f.log.Error("streaming failed", map[string]any{"path": videoPath, "err": err})
			return
		}
	}

	if media.Transcript != nil && !subExists {
		f.log.Info("writing " + filepath.Base(subPath))
		track := subtitle.Synthesize(media.Transcript, media.DurationMs)
		if err := writeFileAtomic(subPath, []byte(track)); err != nil {
			f.log.Error("write subtitle failed", map[string]any{"path": subPath, "err": err})
			return
		}
	}

	f.log.Info("done fetching video", fields)
}

// fetchExercise retrieves one attachment: a single unretried streaming
// attempt against its static URL, skipped when the file is already present.
func (f *fetcher) fetchExercise(ctx context.Context, course types.Course, exercise types.Exercise) {
	target := ExercisePath(f.root, course, exercise)
	if fileExists(target) {
		return
	}

	fields := map[string]any{"course": course.Name, "exercise": exercise.Index, "name": exercise.Name}
	f.log.Info("fetching exercise", fields)
	if err := f.dl.Download(ctx, exercise.URL, target); err != nil {
		f.log.Error("streaming failed", map[string]any{"path": target, "err": err})
		return
	}
	f.log.Info("done fetching exercise", fields)
}

var _ transfer = (*downloader.Downloader)(nil)

// writeFileAtomic stages data through a temporary file so a failed write can
// never leave a truncated file at path. A file at path always implies a
// complete artifact, which is what the skip-if-present checks rely on.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
