package video

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Composer renders digest videos with ffmpeg.
type Composer struct {
	ffmpegPath string
	outputDir  string
	logger     *slog.Logger
}

// NewComposer builds a composer. ffmpegPath defaults to "ffmpeg" on
// PATH.
func NewComposer(ffmpegPath, outputDir string, logger *slog.Logger) *Composer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{ffmpegPath: ffmpegPath, outputDir: outputDir, logger: logger}
}

// Compose renders every segment clip and concatenates them into the
// final video. The project is updated in place with the output path and
// render state.
func (c *Composer) Compose(ctx context.Context, project *Project) error {
	if err := project.Validate(); err != nil {
		return fmt.Errorf("project not renderable: %w", err)
	}

	workDir := filepath.Join(c.outputDir, project.ProjectID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}

	start := time.Now()
	var clips []string

	if project.Config.ShowIntro {
		clip, err := c.renderCard(ctx, workDir, "intro", project.Title, project.Config, project.Config.IntroDuration)
		if err != nil {
			return fmt.Errorf("render intro: %w", err)
		}
		clips = append(clips, clip)
	}

	for _, seg := range project.Segments {
		clip, err := c.renderSegment(ctx, workDir, seg, project.Config)
		if err != nil {
			return fmt.Errorf("render segment %d: %w", seg.Number, err)
		}
		clips = append(clips, clip)
		c.logger.Debug("segment rendered", "project", project.ProjectID, "segment", seg.Number)
	}

	if project.Config.ShowOutro {
		clip, err := c.renderCard(ctx, workDir, "outro", "Thanks for watching", project.Config, project.Config.OutroDuration)
		if err != nil {
			return fmt.Errorf("render outro: %w", err)
		}
		clips = append(clips, clip)
	}

	output := filepath.Join(c.outputDir, project.ProjectID+".mp4")
	if err := c.concat(ctx, workDir, clips, output); err != nil {
		return fmt.Errorf("concat clips: %w", err)
	}

	now := time.Now()
	project.OutputPath = output
	project.IsRendered = true
	project.RenderTime = now.Sub(start).Seconds()
	project.RenderedAt = &now

	c.logger.Info("video rendered",
		"project", project.ProjectID,
		"output", output,
		"segments", len(project.Segments),
		"duration_s", project.TotalDuration(),
		"render_s", project.RenderTime)
	return nil
}

// renderSegment produces one clip from the segment image (or a plain
// background when no image was generated), with the title drawn as a
// lower third. Audio is muxed in when present.
func (c *Composer) renderSegment(ctx context.Context, workDir string, seg *Segment, cfg ProjectConfig) (string, error) {
	out := filepath.Join(workDir, fmt.Sprintf("segment_%02d.mp4", seg.Number))

	args := []string{"-y"}
	if seg.ImagePath != "" {
		args = append(args, "-loop", "1", "-i", seg.ImagePath)
	} else {
		args = append(args, "-f", "lavfi", "-i", fmt.Sprintf("color=c=0x101826:s=%dx%d", cfg.Width, cfg.Height))
	}
	if seg.AudioPath != "" {
		args = append(args, "-i", seg.AudioPath)
	}

	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,drawtext=text='%s':fontcolor=white:fontsize=48:box=1:boxcolor=black@0.6:boxborderw=16:x=(w-text_w)/2:y=h-160",
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, escapeDrawText(seg.Title))

	args = append(args,
		"-t", fmt.Sprintf("%.2f", seg.Duration),
		"-vf", filter,
		"-r", fmt.Sprintf("%d", cfg.FPS),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
	)
	if seg.AudioPath != "" {
		args = append(args, "-c:a", "aac", "-shortest")
	}
	args = append(args, out)

	if err := c.run(ctx, args); err != nil {
		return "", err
	}
	return out, nil
}

// renderCard produces a static title card for intro/outro.
func (c *Composer) renderCard(ctx context.Context, workDir, name, text string, cfg ProjectConfig, duration float64) (string, error) {
	out := filepath.Join(workDir, name+".mp4")
	args := []string{
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=0x101826:s=%dx%d:d=%.2f", cfg.Width, cfg.Height, duration),
		"-vf", fmt.Sprintf("drawtext=text='%s':fontcolor=white:fontsize=72:x=(w-text_w)/2:y=(h-text_h)/2", escapeDrawText(text)),
		"-r", fmt.Sprintf("%d", cfg.FPS),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		out,
	}
	if err := c.run(ctx, args); err != nil {
		return "", err
	}
	return out, nil
}

// concat joins clips with the ffmpeg concat demuxer.
func (c *Composer) concat(ctx context.Context, workDir string, clips []string, output string) error {
	var list strings.Builder
	for _, clip := range clips {
		abs, err := filepath.Abs(clip)
		if err != nil {
			return err
		}
		fmt.Fprintf(&list, "file '%s'\n", abs)
	}

	listPath := filepath.Join(workDir, "concat.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	return c.run(ctx, []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		output,
	})
}

func (c *Composer) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		tail := string(out)
		if len(tail) > 500 {
			tail = tail[len(tail)-500:]
		}
		return fmt.Errorf("ffmpeg failed: %w: %s", err, tail)
	}
	return nil
}

// escapeDrawText escapes characters that break ffmpeg drawtext values.
func escapeDrawText(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return replacer.Replace(s)
}
