package gateway

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/resume-analyzer/internal/intake"
	"github.com/spigell/resume-analyzer/internal/logger"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	requestIDHeader = "X-Request-ID"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (c *Client) analyze(ctx context.Context, file intake.File, description string) (*Result, error) {
	body, formType, err := buildForm(file, description)
	if err != nil {
		return nil, fmt.Errorf("%w: building form: %w", ErrGateway, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}

	requestID := uuid.NewString()
	req = c.setHeaders(req, requestID)
	req.Header.Set("Content-Type", formType)

	log := logger.WithFileFields(c.logger, file.Name, file.MIMEType).With(zap.String(logger.FieldRequestID, requestID))

	resp, err := c.request(req, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	defer resp.Body.Close()

	result, err := parseResponse(resp)
	if err != nil {
		log.Debug("analysis response rejected", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}

	log.Debug("analysis response received",
		zap.Float64("match_score", result.MatchScore),
		zap.String("verdict", result.Verdict),
	)

	return result, nil
}

func buildForm(file intake.File, description string) (*bytes.Buffer, string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		resumeField, quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", file.MIMEType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}

	if _, err = io.Copy(part, bytes.NewReader(file.Content)); err != nil {
		return nil, "", err
	}

	field, err := w.CreateFormField(descriptionField)
	if err != nil {
		return nil, "", err
	}

	if _, err = io.Copy(field, strings.NewReader(description)); err != nil {
		return nil, "", err
	}

	if err = w.Close(); err != nil {
		return nil, "", err
	}

	return &b, w.FormDataContentType(), nil
}

func (c *Client) request(req *http.Request, log *zap.Logger) (*http.Response, error) {
	log.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request, requestID string) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set(requestIDHeader, requestID)

	return req
}

func parseResponse(resp *http.Response) (*Result, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if raw == nil {
		return nil, errors.New("empty response body")
	}

	return decodeResult(raw)
}

// decodeResult requires a numeric score and a string verdict. Skill lists may
// be absent or null and then decode as empty.
func decodeResult(raw map[string]any) (*Result, error) {
	if _, ok := raw["match_score"].(float64); !ok {
		return nil, fmt.Errorf("match_score is missing or not a number")
	}

	if _, ok := raw["verdict"].(string); !ok {
		return nil, fmt.Errorf("verdict is missing or not a string")
	}

	var result Result
	if err := mapstructure.Decode(raw, &result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	if result.MatchingSkills == nil {
		result.MatchingSkills = []string{}
	}

	if result.MissingSkills == nil {
		result.MissingSkills = []string{}
	}

	return &result, nil
}
