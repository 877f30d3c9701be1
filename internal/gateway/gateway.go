package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-analyzer/internal/intake"
)

const (
	DefaultEndpoint = "https://next-gen-ai-resume-analyzer-intelligent.onrender.com/analyze"
	userAgent       = "spigell/resume-analyzer (spigelly@gmail.com)"
	defaultTimeout  = 60 * time.Second

	resumeField      = "resume"
	descriptionField = "job_description"
)

// ErrGateway is returned for every failed analysis call, whatever the cause.
var ErrGateway = errors.New("analysis request failed")

// Result is the match report returned by the analysis service.
type Result struct {
	MatchScore     float64  `json:"match_score" mapstructure:"match_score"`
	Verdict        string   `json:"verdict" mapstructure:"verdict"`
	MatchingSkills []string `json:"matching_skills" mapstructure:"matching_skills"`
	MissingSkills  []string `json:"missing_skills" mapstructure:"missing_skills"`
	FileName       string   `json:"file_name,omitempty" mapstructure:"file_name"`
}

// Client performs analysis calls against a fixed endpoint. It keeps no state
// between calls and never retries.
type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	Endpoint   string
}

func New(logger *zap.Logger, endpoint string, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		logger:   logger,
		Endpoint: endpoint,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		UserAgent: userAgent,
	}
}

// Analyze sends the résumé and the job description to the analysis service.
func (c *Client) Analyze(ctx context.Context, file intake.File, description string) (*Result, error) {
	return c.analyze(ctx, file, description)
}
