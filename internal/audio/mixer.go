package audio

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Mixer concatenates audio clips
type Mixer interface {
	// Concat joins clips in order with gap of silence between them
	Concat(ctx context.Context, clips []string, gap time.Duration, outputFile string) error
}

// FFmpegMixer implements Mixer with the ffmpeg concat filter
type FFmpegMixer struct {
	SampleRate int
}

// NewFFmpegMixer creates a mixer producing 24kHz mono output
func NewFFmpegMixer() *FFmpegMixer {
	return &FFmpegMixer{SampleRate: 24000}
}

// Concat joins clips into outputFile
func (m *FFmpegMixer) Concat(ctx context.Context, clips []string, gap time.Duration, outputFile string) error {
	if len(clips) == 0 {
		return fmt.Errorf("no clips to concatenate")
	}
	if err := checkFFmpegInstalled(); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", m.concatArgs(clips, gap, outputFile)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

// concatArgs builds the ffmpeg command line. Every input is resampled to
// the same format before concatenation.
func (m *FFmpegMixer) concatArgs(clips []string, gap time.Duration, outputFile string) []string {
	var args []string
	var filters, labels []string
	n := 0

	addInput := func(inputArgs ...string) {
		args = append(args, inputArgs...)
		label := fmt.Sprintf("a%d", n)
		filters = append(filters, fmt.Sprintf("[%d:a]aresample=%d,aformat=channel_layouts=mono[%s]", n, m.SampleRate, label))
		labels = append(labels, "["+label+"]")
		n++
	}

	for i, clip := range clips {
		if i > 0 && gap > 0 {
			addInput("-f", "lavfi", "-t", fmt.Sprintf("%.3f", gap.Seconds()),
				"-i", fmt.Sprintf("anullsrc=r=%d:cl=mono", m.SampleRate))
		}
		addInput("-i", clip)
	}

	filter := strings.Join(filters, ";") + ";" +
		strings.Join(labels, "") + fmt.Sprintf("concat=n=%d:v=0:a=1[out]", n)

	return append(args, "-filter_complex", filter, "-map", "[out]", "-y", outputFile)
}
