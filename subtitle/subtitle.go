// Package subtitle synthesizes an SRT caption track from a video transcript.
// Each caption runs from its own start timestamp to the next line's start,
// the final one to the total video duration.
//
// The timestamp format is the platform downloader's historical one: the
// fractional field is the millisecond remainder printed with a minimum width
// of two digits, comma-separated. It is not the conventional three-digit SRT
// millisecond field and must stay this way for output compatibility.
package subtitle

import (
	"fmt"
	"strings"

	"github.com/llget/lldl/types"
)

// FormatTime renders a millisecond offset as HH:MM:SS,FF with two-digit
// zero-padded fields.
func FormatTime(ms int64) string {
	seconds, milliseconds := ms/1000, ms%1000
	minutes, seconds := seconds/60, seconds%60
	hours, minutes := minutes/60, minutes%60
	return fmt.Sprintf("%02d:%02d:%02d,%02d", hours, minutes, seconds, milliseconds)
}

// Synthesize renders transcript lines into SRT blocks, in original order,
// indexed from 1. Lines are passed through as-is; no reordering or validation
// happens here.
func Synthesize(lines []types.TranscriptLine, totalDurationMs int64) string {
	var b strings.Builder
	for i, line := range lines {
		endAt := totalDurationMs
		if i+1 < len(lines) {
			endAt = lines[i+1].StartAt
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1, FormatTime(line.StartAt), FormatTime(endAt), line.Caption)
	}
	return b.String()
}
