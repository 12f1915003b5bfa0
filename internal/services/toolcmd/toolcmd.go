// Package toolcmd renders and executes the operator-supplied command
// templates for transcription and insight extraction. Templates run through a
// shell, so operators are trusted to supply safe commands.
package toolcmd

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"

	"podscribe/internal/logging"
	"podscribe/internal/services"
)

var commandContext = exec.CommandContext

// maxOutputInError bounds how much captured tool output is carried in a
// failure message.
const maxOutputInError = 2000

// Vars holds the concrete paths substituted into a command template.
type Vars struct {
	Audio        string
	Transcript   string
	EpisodeDir   string
	InsightsFile string
}

// Render substitutes the template's placeholders. Unknown placeholders are
// left intact so a typo surfaces in the executed command rather than
// vanishing silently.
func Render(template string, vars Vars) string {
	return strings.NewReplacer(
		"{audio}", vars.Audio,
		"{transcript}", vars.Transcript,
		"{episode_dir}", vars.EpisodeDir,
		"{insights_file}", vars.InsightsFile,
	).Replace(template)
}

// Runner executes rendered command templates.
type Runner interface {
	Run(ctx context.Context, stage, template string, vars Vars) error
}

// Shell runs command templates through sh -c, capturing combined output.
type Shell struct {
	logger *slog.Logger
}

// NewShell builds the default runner.
func NewShell(logger *slog.Logger) *Shell {
	return &Shell{logger: logging.WithComponent(logger, "toolcmd")}
}

// Run renders and executes the template. A non-zero exit is reported as an
// external tool failure carrying the captured stdout/stderr; output from a
// successful run is discarded.
func (s *Shell) Run(ctx context.Context, stage, template string, vars Vars) error {
	command := Render(template, vars)
	s.logger.Debug("running tool",
		logging.String(logging.FieldStage, stage),
		logging.String("command", command))

	cmd := commandContext(ctx, "sh", "-c", command)
	output, err := cmd.CombinedOutput()
	if err != nil {
		message := "command failed"
		if text := truncateOutput(output); text != "" {
			message = "command failed: " + text
		}
		return services.Wrap(services.ErrExternalTool, stage, "run tool", message, err)
	}
	return nil
}

func truncateOutput(output []byte) string {
	text := strings.TrimSpace(string(output))
	if len(text) > maxOutputInError {
		text = text[:maxOutputInError] + "..."
	}
	return text
}

var _ Runner = (*Shell)(nil)
