package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"flowbuilder/application/mapper"
	"flowbuilder/application/ports"
	pkgerrors "flowbuilder/pkg/errors"

	"go.uber.org/zap"
)

// HTTPPlanner talks to the conversational planner backend over HTTP. The
// backend answers a prompt with either a plain reply or a raw workflow
// payload; either way the response is returned verbatim for mapping.
type HTTPPlanner struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPPlanner creates a planner client
func NewHTTPPlanner(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPPlanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPPlanner{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type planRequest struct {
	Prompt       string `json:"prompt"`
	SessionToken string `json:"session_token,omitempty"`
}

type planResponse struct {
	Reply    string              `json:"reply,omitempty"`
	Workflow *mapper.RawWorkflow `json:"workflow,omitempty"`
}

// Plan sends the prompt and returns the raw graph payload, nil when the
// planner answered conversationally without a graph
func (p *HTTPPlanner) Plan(ctx context.Context, prompt string, sessionToken string) (*mapper.RawWorkflow, error) {
	if p.baseURL == "" {
		return nil, pkgerrors.NewExternalError("planner", fmt.Errorf("planner URL not configured"))
	}

	body, err := json.Marshal(planRequest{
		Prompt:       prompt,
		SessionToken: sessionToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/plan", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build plan request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.NewExternalError("planner", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		p.logger.Warn("Planner returned error status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", payload),
		)
		return nil, pkgerrors.NewExternalError("planner", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var out planResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, pkgerrors.NewExternalError("planner", fmt.Errorf("invalid response: %w", err))
	}

	p.logger.Debug("Planner turn complete",
		zap.Duration("elapsed", time.Since(started)),
		zap.Bool("has_workflow", out.Workflow != nil),
	)
	return out.Workflow, nil
}

var _ ports.Planner = (*HTTPPlanner)(nil)
