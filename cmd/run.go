package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-analyzer/internal/intake"
	"github.com/spigell/resume-analyzer/internal/logger"
	"github.com/spigell/resume-analyzer/internal/session"
	"github.com/spigell/resume-analyzer/internal/utils"
	"github.com/spigell/resume-analyzer/internal/view"
)

const (
	PromptBrowse          = "Browse for a resume"
	PromptDrop            = "Drop a resume"
	PromptDescription     = "Edit job description"
	PromptDescriptionFile = "Load job description from file"
	PromptReport          = "Show report"
	PromptQuit            = "Quit"

	descriptionPreviewLength = 40
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive resume analyzer",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// pasteEvent is a drop made by pasting a path into the drop prompt. The prompt
// has already consumed the input, so there is no default handling to stop.
type pasteEvent struct{}

func (pasteEvent) PreventDefault() {}

// run is the interactive mode of the cli.
func run(cmd *cobra.Command) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating a logger: %s\n", err)
		os.Exit(1)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-analyzer", zap.String("version", version), zap.String("endpoint", config.Endpoint))

	out := cmd.OutOrStdout()
	opts := view.Options{Color: config.Color}
	notifier := &consoleNotifier{w: cmd.ErrOrStderr(), color: config.Color}

	ctrl, stop := startSession(ctx, config, logger, notifier, reportOnSuccess(out, opts))
	defer func() {
		if err := stop(); err != nil {
			logger.Warn("stopping session", zap.Error(err))
		}
	}()

	for {
		snap, err := ctrl.Snapshot()
		if err != nil {
			logger.Error("reading session state", zap.Error(err))
			return
		}

		model := view.Render(snap.State)
		menu := promptui.Select{
			Label: menuLabel(snap),
			Items: []string{PromptBrowse, PromptDrop, PromptDescription, PromptDescriptionFile, model.TriggerLabel, PromptReport, PromptQuit},
			Size:  7,
		}

		_, action, err := menu.Run()
		if err != nil {
			if isPromptCancel(err) {
				logger.Info("exiting", zap.String("reason", "prompt closed"))
				return
			}
			logger.Error("exiting", zap.Error(err))
			return
		}

		if err := handleAction(action, ctrl, logger, out, opts); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Error("exiting", zap.Error(err))
			return
		}
	}
}

func handleAction(action string, ctrl *session.Controller, logger *zap.Logger, out io.Writer, opts view.Options) error {
	switch action {
	case PromptBrowse:
		return browseResume(ctrl, logger)
	case PromptDrop:
		return dropResume(ctrl, logger)
	case PromptDescription:
		return editDescription(ctrl)
	case PromptDescriptionFile:
		return loadDescription(ctrl, logger)
	case view.TriggerIdle, view.TriggerBusy:
		err := ctrl.Submit()
		if errors.Is(err, session.ErrPreconditionNotMet) {
			// the notifier has already told the user
			return nil
		}
		return err
	case PromptReport:
		snap, err := ctrl.Snapshot()
		if err != nil {
			return err
		}
		return view.Write(out, view.Render(snap.State), opts)
	case PromptQuit:
		logger.Info("exiting", zap.String("reason", "quit selected"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// reportOnSuccess prints the report whenever a new result arrives. It runs on
// the session event loop, which calls it sequentially.
func reportOnSuccess(out io.Writer, opts view.Options) func(session.Snapshot) {
	var last *session.State
	return func(snap session.Snapshot) {
		prev := last
		state := snap.State
		last = &state

		if state.Phase != session.Succeeded || prev != nil && prev.Phase == session.Succeeded && prev.Result == state.Result {
			return
		}

		fmt.Fprintln(out)
		_ = view.Write(out, view.Render(state), opts)
	}
}

func menuLabel(snap session.Snapshot) string {
	description := "no job description"
	if snap.Description != "" {
		description = "job description: " + utils.TruncateForLog(snap.Description, descriptionPreviewLength)
	}

	return fmt.Sprintf("%s | %s", view.IntakeLine(snap.Selected, snap.DragActive), description)
}

func browseResume(ctrl *session.Controller, logger *zap.Logger) error {
	prompt := promptui.Prompt{
		Label: "Path to the resume",
		Validate: func(input string) error {
			_, err := os.Stat(cleanDroppedPath(input))
			return err
		},
	}

	path, err := prompt.Run()
	if err != nil {
		if isPromptCancel(err) {
			return nil
		}
		return err
	}

	file, err := intake.Open(cleanDroppedPath(path))
	if err != nil {
		logger.Warn("opening resume", zap.Error(err))
		return nil
	}

	if err := ctrl.SelectCandidate(file); err != nil && !errors.Is(err, intake.ErrInvalidFormat) {
		return err
	}

	return nil
}

// dropResume treats the open drop prompt as a drag over the window: opening it
// starts the drag, cancelling it leaves, and submitting a path drops the file.
func dropResume(ctrl *session.Controller, logger *zap.Logger) error {
	if err := ctrl.DragEnter(pasteEvent{}); err != nil {
		return err
	}

	prompt := promptui.Prompt{
		Label: "Drag the resume file into the terminal and press ENTER",
	}

	path, err := prompt.Run()
	if err != nil {
		if isPromptCancel(err) {
			return ctrl.DragLeave(pasteEvent{})
		}
		return err
	}

	var files []intake.File
	if path = cleanDroppedPath(path); path != "" {
		file, err := intake.Open(path)
		if err != nil {
			logger.Warn("opening dropped resume", zap.Error(err))
			return ctrl.DragLeave(pasteEvent{})
		}
		files = append(files, file)
	}

	if err := ctrl.Drop(pasteEvent{}, files); err != nil && !errors.Is(err, intake.ErrInvalidFormat) {
		return err
	}

	return nil
}

func editDescription(ctrl *session.Controller) error {
	snap, err := ctrl.Snapshot()
	if err != nil {
		return err
	}

	prompt := promptui.Prompt{
		Label:     "Job description",
		Default:   snap.Description,
		AllowEdit: true,
	}

	text, err := prompt.Run()
	if err != nil {
		if isPromptCancel(err) {
			return nil
		}
		return err
	}

	return ctrl.UpdateDescription(text)
}

func loadDescription(ctrl *session.Controller, logger *zap.Logger) error {
	prompt := promptui.Prompt{Label: "Path to the job description"}

	path, err := prompt.Run()
	if err != nil {
		if isPromptCancel(err) {
			return nil
		}
		return err
	}

	data, err := os.ReadFile(cleanDroppedPath(path))
	if err != nil {
		logger.Warn("reading job description", zap.Error(err))
		return nil
	}

	return ctrl.UpdateDescription(string(data))
}

// cleanDroppedPath undoes what terminals do to a dragged file: quoting,
// backslash-escaped spaces and file:// URLs.
func cleanDroppedPath(raw string) string {
	path := strings.TrimSpace(raw)

	if len(path) >= 2 {
		first, last := path[0], path[len(path)-1]
		if first == last && (first == '\'' || first == '"') {
			path = path[1 : len(path)-1]
		}
	}

	if strings.HasPrefix(path, "file://") {
		if u, err := url.Parse(path); err == nil {
			return u.Path
		}
	}

	return strings.ReplaceAll(path, `\ `, " ")
}

func isPromptCancel(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort)
}
