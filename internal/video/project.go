package video

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"technews/internal/gemini"
)

// Resolution presets for rendered videos.
const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
	DefaultFPS    = 30

	DefaultIntroDuration = 3.0
	DefaultOutroDuration = 3.0
)

// Segment is one news story inside a digest video.
type Segment struct {
	SegmentID   string                  `json:"segment_id"`
	Number      int                     `json:"number"`
	Title       string                  `json:"title"`
	Script      *gemini.GeneratedScript `json:"script"`
	ImagePrompt string                  `json:"image_prompt,omitempty"`
	ImagePath   string                  `json:"image_path,omitempty"`
	AudioPath   string                  `json:"audio_path,omitempty"`
	StartTime   float64                 `json:"start_time"`
	Duration    float64                 `json:"duration"`
	EndTime     float64                 `json:"end_time"`
}

// ProjectConfig controls rendering of one digest video.
type ProjectConfig struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	FPS           int     `json:"fps"`
	ShowIntro     bool    `json:"show_intro"`
	ShowOutro     bool    `json:"show_outro"`
	IntroDuration float64 `json:"intro_duration"`
	OutroDuration float64 `json:"outro_duration"`
}

// DefaultConfig returns the 1080p defaults used for daily digests.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		FPS:           DefaultFPS,
		ShowIntro:     true,
		ShowOutro:     true,
		IntroDuration: DefaultIntroDuration,
		OutroDuration: DefaultOutroDuration,
	}
}

// Project is a complete digest video: segments plus rendering state.
type Project struct {
	ProjectID  string        `json:"project_id"`
	Title      string        `json:"title"`
	Config     ProjectConfig `json:"config"`
	Segments   []*Segment    `json:"segments"`
	OutputPath string        `json:"output_path,omitempty"`
	IsRendered bool          `json:"is_rendered"`
	RenderTime float64       `json:"render_time_seconds"`
	CreatedAt  time.Time     `json:"created_at"`
	RenderedAt *time.Time    `json:"rendered_at,omitempty"`
}

// NewProject creates an empty project with a date-stamped ID.
func NewProject(title string, cfg ProjectConfig) *Project {
	now := time.Now()
	return &Project{
		ProjectID: fmt.Sprintf("digest_%s", now.Format("20060102_150405")),
		Title:     title,
		Config:    cfg,
		CreatedAt: now,
	}
}

// AddSegment appends a segment, chaining its start time after the
// previous segment (or the intro for the first one).
func (p *Project) AddSegment(seg *Segment) {
	if len(p.Segments) > 0 {
		seg.StartTime = p.Segments[len(p.Segments)-1].EndTime
	} else if p.Config.ShowIntro {
		seg.StartTime = p.Config.IntroDuration
	}
	seg.Number = len(p.Segments) + 1
	seg.EndTime = seg.StartTime + seg.Duration
	p.Segments = append(p.Segments, seg)
}

// TotalDuration is intro + segments + outro in seconds.
func (p *Project) TotalDuration() float64 {
	var total float64
	if p.Config.ShowIntro {
		total += p.Config.IntroDuration
	}
	for _, seg := range p.Segments {
		total += seg.Duration
	}
	if p.Config.ShowOutro {
		total += p.Config.OutroDuration
	}
	return total
}

// Validate reports whether the project can be rendered.
func (p *Project) Validate() error {
	if len(p.Segments) == 0 {
		return fmt.Errorf("project %s has no segments", p.ProjectID)
	}
	for _, seg := range p.Segments {
		if seg.Script == nil || seg.Script.English == "" {
			return fmt.Errorf("segment %d has no script", seg.Number)
		}
		if seg.Duration <= 0 {
			return fmt.Errorf("segment %d has no duration", seg.Number)
		}
	}
	return nil
}

// SaveManifest writes the project metadata next to the rendered video
// so reruns and the upload step can inspect what was produced.
func (p *Project) SaveManifest(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, p.ProjectID+".json")
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}
