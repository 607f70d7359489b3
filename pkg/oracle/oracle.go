// Package oracle contains clients for the external credibility oracles and
// the merge of their judgments
package oracle // import "github.com/joincivil/civil-content-registry/pkg/oracle"

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

const (
	maxResponseSize = 1 << 20
)

// Oracle assesses the credibility of a text
type Oracle interface {
	Name() string
	Assess(ctx context.Context, text string) (*model.Judgment, error)
}

// ErrorCategory is the normalized cause of an oracle failure
type ErrorCategory string

const (
	// ErrorTimeout is a call that exceeded its deadline
	ErrorTimeout ErrorCategory = "timeout"
	// ErrorBadData is a response that could not be decoded or was out of range
	ErrorBadData ErrorCategory = "bad_data"
	// ErrorOutage is an unreachable oracle or a server error
	ErrorOutage ErrorCategory = "outage"
	// ErrorAuthentication is a rejected key
	ErrorAuthentication ErrorCategory = "authentication"
)

// Error is an oracle failure with its normalized category
type Error struct {
	Category   ErrorCategory
	Oracle     string
	Underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("oracle %s [%s]: %v", e.Oracle, e.Category, e.Underlying)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Underlying
}

func newError(category ErrorCategory, oracle string, underlying error) *Error {
	return &Error{Category: category, Oracle: oracle, Underlying: underlying}
}

// NewHTTPOracle returns an oracle that posts text to endpoint. An empty
// apiKey sends no Authorization header.
func NewHTTPOracle(name string, endpoint string, apiKey string) *HTTPOracle {
	return &HTTPOracle{
		name:     name,
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{},
	}
}

// HTTPOracle calls a JSON credibility endpoint
type HTTPOracle struct {
	name     string
	endpoint string
	apiKey   string
	client   *http.Client
}

type assessRequest struct {
	Text string `json:"text"`
}

type assessResponse struct {
	Score   *int   `json:"score"`
	Verdict string `json:"verdict"`
	Summary string `json:"summary"`
}

// Name returns the oracle name
func (o *HTTPOracle) Name() string {
	return o.name
}

// Assess posts text to the oracle and returns its judgment. The caller's
// context bounds the call.
func (o *HTTPOracle) Assess(ctx context.Context, text string) (*model.Judgment, error) {
	body, err := json.Marshal(&assessRequest{Text: text})
	if err != nil {
		return nil, newError(ErrorBadData, o.name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, newError(ErrorOutage, o.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, newError(ErrorTimeout, o.name, err)
		}
		return nil, newError(ErrorOutage, o.name, err)
	}
	defer resp.Body.Close() // nolint: errcheck

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, newError(ErrorAuthentication, o.name, errors.Errorf("status %v", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, newError(ErrorOutage, o.name, errors.Errorf("status %v", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, newError(ErrorOutage, o.name, err)
	}
	assessResp := &assessResponse{}
	err = json.Unmarshal(data, assessResp)
	if err != nil {
		return nil, newError(ErrorBadData, o.name, err)
	}
	if assessResp.Score == nil || *assessResp.Score < 0 || *assessResp.Score > 100 {
		return nil, newError(ErrorBadData, o.name, errors.New("score missing or out of range"))
	}
	return model.NewJudgment(*assessResp.Score, assessResp.Verdict, assessResp.Summary), nil
}

// Run calls oracle with timeout and returns its attributed judgment. Failures
// are recorded as an unavailable source rather than returned.
func Run(ctx context.Context, oracle Oracle, text string, timeout time.Duration) *model.SourceJudgment {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	judgment, err := oracle.Assess(ctx, text)
	if err != nil {
		return model.NewSourceJudgment(oracle.Name(), nil, err.Error())
	}
	return model.NewSourceJudgment(oracle.Name(), judgment, "")
}
