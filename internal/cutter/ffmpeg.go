// Package cutter renders the final video by keeping only the relevant
// segments of the input, joined with crossfade transitions.
package cutter

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"lecture-insights-go/internal/logger"
	"lecture-insights-go/internal/types"
)

const (
	transitionEffect   = "fade"
	transitionDuration = 2
	outputFPS          = 25
)

// ErrNoRelevantSegments is returned when the timeline keeps nothing to cut.
var ErrNoRelevantSegments = errors.New("cutter: no relevant segments to keep")

type VideoCutter struct {
	inputPath  string
	outputPath string
	segments   []*types.SpeechSegment
}

func New(inputPath, outputPath string, segments []*types.SpeechSegment) *VideoCutter {
	return &VideoCutter{inputPath: inputPath, outputPath: outputPath, segments: segments}
}

// Cut runs ffmpeg with the built filter graph.
func (vc *VideoCutter) Cut(ctx context.Context) error {
	log := logger.New().WithComponent("cutter").WithField("output", vc.outputPath)

	filter, vLabel, aLabel, err := BuildFilter(vc.segments)
	if err != nil {
		return err
	}

	args := []string{
		"-i", vc.inputPath,
		"-filter_complex", filter,
		"-map", "[" + vLabel + "]",
		"-map", "[" + aLabel + "]",
		"-vcodec", "libx264",
		"-acodec", "aac",
		"-preset", "ultrafast",
		"-pix_fmt", "yuv420p",
		"-r", fmt.Sprint(outputFPS),
		"-f", "mp4",
		"-y", vc.outputPath,
	}

	log.Debug("running ffmpeg: " + strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		log.WithError(err).Error("ffmpeg failed")
		return fmt.Errorf("ffmpeg: %w\noutput: %s", err, output)
	}
	log.Info("final video written")
	return nil
}

// BuildFilter produces the filter_complex expression trimming each relevant
// segment, normalized to a constant frame rate, then chains the clips with
// xfade/acrossfade. Returns the final video and audio stream labels.
func BuildFilter(segments []*types.SpeechSegment) (filter, vLabel, aLabel string, err error) {
	type span struct{ start, end float64 }
	var spans []span
	for _, seg := range segments {
		if !seg.IsRelevant {
			continue
		}
		spans = append(spans, span{
			start: round1(seg.StartTimeSec),
			end:   round1(seg.EndTimeSec),
		})
	}
	if len(spans) == 0 {
		return "", "", "", ErrNoRelevantSegments
	}

	var b strings.Builder

	// First pass: normalize every kept span to the same fps and reset timestamps
	for k, sp := range spans {
		fmt.Fprintf(&b, "[0:v]fps=%d,trim=%g:%g,setpts=PTS-STARTPTS[vtemp%d];", outputFPS, sp.start, sp.end, k)
		fmt.Fprintf(&b, "[vtemp%d]format=yuv420p[v%d];", k, k)
		fmt.Fprintf(&b, "[0:a]atrim=%g:%g,asetpts=PTS-STARTPTS[a%d];", sp.start, sp.end, k)
	}

	// Second pass: chain the clips with transitions
	vLabel, aLabel = "v0", "a0"
	totalDuration := 0.0
	for k := 1; k < len(spans); k++ {
		prev := spans[k-1]
		totalDuration = round1(totalDuration + prev.end - prev.start - transitionDuration)

		newV := fmt.Sprintf("vc%d", k)
		newA := fmt.Sprintf("ac%d", k)
		fmt.Fprintf(&b, "[%s][v%d]xfade=transition=%s:duration=%d:offset=%g[%s];",
			vLabel, k, transitionEffect, transitionDuration, totalDuration, newV)
		fmt.Fprintf(&b, "[%s][a%d]acrossfade=d=%d:c1=tri:c2=tri[%s];",
			aLabel, k, transitionDuration, newA)
		vLabel, aLabel = newV, newA
	}

	filter = strings.TrimSuffix(b.String(), ";")
	return filter, vLabel, aLabel, nil
}

func round1(v float64) float64 {
	if v < 0 {
		return float64(int(v*10-0.5)) / 10
	}
	return float64(int(v*10+0.5)) / 10
}
