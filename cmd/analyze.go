package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-analyzer/internal/intake"
	"github.com/spigell/resume-analyzer/internal/logger"
	"github.com/spigell/resume-analyzer/internal/session"
	"github.com/spigell/resume-analyzer/internal/view"
)

var analyzeCmd = &cobra.Command{
	Use:          "analyze",
	Short:        "Analyze a resume against a job description once and print the report",
	Example:      "analyze --resume cv.pdf --job-description-file vacancy.txt",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("resume", "r", "", "path to the resume (.pdf or .docx)")
	analyzeCmd.Flags().String("job-description", "", "job description text")
	analyzeCmd.Flags().String("job-description-file", "", "file with the job description text")
}

func analyze(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Error("getting a config", zap.Error(err))
		return err
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	description, err := readDescription(cmd)
	if err != nil {
		logger.Error("reading job description", zap.Error(err))
		return err
	}

	notifier := &consoleNotifier{w: cmd.ErrOrStderr(), color: config.Color}
	ctrl, stop := startSession(ctx, config, logger, notifier, nil)
	defer func() {
		if err := stop(); err != nil {
			logger.Warn("stopping session", zap.Error(err))
		}
	}()

	if path := strings.TrimSpace(flagString(cmd, "resume")); path != "" {
		file, err := intake.Open(path)
		if err != nil {
			logger.Error("opening resume", zap.Error(err))
			return err
		}

		if err := ctrl.SelectCandidate(file); err != nil {
			return err
		}
	}

	if err := ctrl.UpdateDescription(description); err != nil {
		return err
	}

	if err := ctrl.Submit(); err != nil {
		return err
	}

	logger.Info("waiting for the analysis service", zap.String("endpoint", config.Endpoint))

	state, err := ctrl.Await(ctx)
	if err != nil {
		return err
	}

	if err := view.Write(cmd.OutOrStdout(), view.Render(state), view.Options{Color: config.Color}); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if state.Phase == session.Failed {
		return fmt.Errorf("analysis failed: %w", state.Err)
	}

	return nil
}

// readDescription returns the job description verbatim. The file flag wins
// over the inline text.
func readDescription(cmd *cobra.Command) (string, error) {
	if path := strings.TrimSpace(flagString(cmd, "job-description-file")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading job description from file %q: %w", path, err)
		}
		return string(data), nil
	}

	return flagString(cmd, "job-description"), nil
}

func flagString(cmd *cobra.Command, name string) string {
	flag := cmd.Flag(name)
	if flag == nil {
		return ""
	}
	return flag.Value.String()
}
