// Package catalog turns one raw course payload into the typed course tree
// the scheduler walks. Pure transform, no I/O.
package catalog

import (
	"fmt"

	"github.com/llget/lldl/internal/sanitize"
	"github.com/llget/lldl/linkedin/api"
	"github.com/llget/lldl/types"
)

const (
	// VideoExt is the container extension of the platform's progressive
	// streams.
	VideoExt = ".mp4"
	// SubtitleExt is the extension of the synthesized caption track.
	SubtitleExt = ".srt"
)

// BuildCourse maps a course element onto the immutable course tree. Indices
// are dense, 1-based, and follow the array order of the payload; filenames
// are derived from (index, sanitized title) and therefore stable across runs.
func BuildCourse(element *api.CourseElement) types.Course {
	chapters := make([]types.Chapter, 0, len(element.Chapters))
	for ci, ch := range element.Chapters {
		videos := make([]types.Video, 0, len(ch.Videos))
		for vi, v := range ch.Videos {
			videos = append(videos, types.Video{
				Name:     v.Title,
				Slug:     v.Slug,
				Index:    vi + 1,
				Filename: fmt.Sprintf("%02d - %s%s", vi+1, sanitize.Clean(v.Title), VideoExt),
			})
		}
		chapters = append(chapters, types.Chapter{
			Name:   ch.Title,
			Index:  ci + 1,
			Videos: videos,
		})
	}

	exercises := make([]types.Exercise, 0, len(element.ExerciseFiles))
	for ei, ex := range element.ExerciseFiles {
		exercises = append(exercises, types.Exercise{
			Name:   ex.Name,
			URL:    ex.URL,
			Course: element.Title,
			Index:  ei + 1,
		})
	}

	return types.Course{
		Name:        element.Title,
		Slug:        element.Slug,
		Description: element.Description,
		Unlocked:    element.FullCourseUnlocked,
		Chapters:    chapters,
		Exercises:   exercises,
	}
}
