package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/slate/internal/infrastructure/config"
	"github.com/felixgeelhaar/slate/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/slate/pkg/domain/action"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(1).
			PaddingRight(1)
)

func check(ok bool) string {
	if ok {
		return okStyle.Render("✓")
	}
	return failStyle.Render("✗")
}

func priorityStyle(p action.Priority) lipgloss.Style {
	switch p {
	case action.PriorityCritical:
		return failStyle
	case action.PriorityHigh:
		return warnStyle
	default:
		return mutedStyle
	}
}

func progressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return okStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
}

// render writes v in the configured format. text draws the human view.
func render(cmd *cobra.Command, services *wiring.AppServices, v any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	switch services.Workspace.Config.Output {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		text(w)
		return nil
	}
}

// bannerNotifier prints notifications as a highlighted banner.
type bannerNotifier struct {
	w io.Writer
}

func newBannerNotifier(w io.Writer) *bannerNotifier {
	return &bannerNotifier{w: w}
}

func (n *bannerNotifier) Notify(_ context.Context, title, message string) error {
	_, err := fmt.Fprintf(n.w, "%s %s\n", bannerStyle.Render(title), message)
	return err
}
