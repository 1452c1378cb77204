package app

import (
	"fmt"
	"strings"
	"time"
)

// formatReport renders a run summary as Telegram HTML.
func formatReport(r *RunResult) string {
	var b strings.Builder

	b.WriteString("<b>📺 Tech News Digest produced</b>\n\n")
	fmt.Fprintf(&b, "Articles: %d (IT/Tech ratio %.0f%%, %d categories)\n",
		len(r.Selected), r.Report.ITTechRatio*100, r.Report.CategoryDiversity)
	fmt.Fprintf(&b, "Scripts: %d\n", r.Scripts)
	fmt.Fprintf(&b, "Took: %s\n", r.Duration.Round(time.Second))

	if r.VideoURL != "" {
		fmt.Fprintf(&b, "Video: %s\n", r.VideoURL)
	} else if r.VideoPath != "" {
		fmt.Fprintf(&b, "File: %s\n", r.VideoPath)
	}

	b.WriteString("\n<b>Stories:</b>\n")
	for i, article := range r.Selected {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, article.Title, article.Category)
	}

	if len(r.Report.Warnings) > 0 {
		b.WriteString("\n⚠️ ")
		b.WriteString(strings.Join(r.Report.Warnings, "; "))
		b.WriteString("\n")
	}
	return b.String()
}

// formatFailure renders a run failure notification.
func formatFailure(err error) string {
	return fmt.Sprintf("<b>❌ Tech News Digest run failed</b>\n\n<code>%v</code>", err)
}
