package lldl

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/llget/lldl/internal/sanitize"
	"github.com/llget/lldl/linkedin/catalog"
	"github.com/llget/lldl/types"
)

const exercisesFolderName = "exercises"

// ChapterDir maps a chapter to its on-disk directory under root. Pure
// function of the names and index; directory creation is the caller's job.
func ChapterDir(root string, course types.Course, chapter types.Chapter) string {
	folder := fmt.Sprintf("%02d - %s", chapter.Index, sanitize.Clean(chapter.Name))
	return filepath.Join(root, sanitize.Clean(course.Name), folder)
}

// ExercisesDir maps a course to the single shared directory holding all of
// its attachments, independent of individual exercise index.
func ExercisesDir(root string, course types.Course) string {
	return filepath.Join(root, sanitize.Clean(course.Name), exercisesFolderName)
}

// ExercisePath maps an exercise to its target file. Exercise names are
// platform file names already and are kept verbatim.
func ExercisePath(root string, course types.Course, exercise types.Exercise) string {
	return filepath.Join(ExercisesDir(root, course), fmt.Sprintf("%02d - %s", exercise.Index, exercise.Name))
}

// subtitlePath swaps the video extension for the subtitle one.
func subtitlePath(videoPath string) string {
	return strings.TrimSuffix(videoPath, catalog.VideoExt) + catalog.SubtitleExt
}
