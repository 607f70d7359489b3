package oracle_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/joincivil/civil-content-registry/pkg/model"
	"github.com/joincivil/civil-content-registry/pkg/oracle"
)

func oracleServer(t *testing.T, status int, response string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := map[string]string{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil || req["text"] == "" {
			t.Errorf("Oracle should have received text: %v, err: %v", req, err)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
}

func categoryOf(err error) oracle.ErrorCategory {
	var oerr *oracle.Error
	if errors.As(err, &oerr) {
		return oerr.Category
	}
	return ""
}

func TestHTTPOracleAssess(t *testing.T) {
	server := oracleServer(t, http.StatusOK, `{"score":82,"verdict":"likely true","summary":"matches wire reports"}`)
	defer server.Close()

	o := oracle.NewHTTPOracle("factcheck", server.URL, "secret")
	judgment, err := o.Assess(context.Background(), "The council approved the transit budget")
	if err != nil {
		t.Fatalf("Should have assessed: err: %v", err)
	}
	if judgment.Score() != 82 || judgment.Verdict() != "likely true" || judgment.Summary() != "matches wire reports" {
		t.Errorf("Wrong judgment: %v %v %v", judgment.Score(), judgment.Verdict(), judgment.Summary())
	}
}

func TestHTTPOracleErrors(t *testing.T) {
	tests := []struct {
		status   int
		response string
		key      string
		category oracle.ErrorCategory
	}{
		{http.StatusOK, `{"score":82}`, "wrong", oracle.ErrorAuthentication},
		{http.StatusInternalServerError, `oops`, "secret", oracle.ErrorOutage},
		{http.StatusOK, `not json`, "secret", oracle.ErrorBadData},
		{http.StatusOK, `{"verdict":"true"}`, "secret", oracle.ErrorBadData},
		{http.StatusOK, `{"score":140}`, "secret", oracle.ErrorBadData},
	}
	for i, test := range tests {
		server := oracleServer(t, test.status, test.response)
		o := oracle.NewHTTPOracle("factcheck", server.URL, test.key)
		_, err := o.Assess(context.Background(), "text")
		if categoryOf(err) != test.category {
			t.Errorf("Test %v: wrong category: %v, err: %v", i, categoryOf(err), err)
		}
		server.Close()
	}
}

type slowOracle struct{}

func (slowOracle) Name() string { return "slow" }

func (slowOracle) Assess(ctx context.Context, text string) (*model.Judgment, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Second):
		return model.NewJudgment(50, "", ""), nil
	}
}

func TestRunTimeout(t *testing.T) {
	start := time.Now()
	sj := oracle.Run(context.Background(), slowOracle{}, "text", 20*time.Millisecond)
	if sj.Available() {
		t.Errorf("Timed out oracle should be unavailable")
	}
	if sj.Source() != "slow" || sj.Error() == "" {
		t.Errorf("Should have recorded the source and reason: %v %v", sj.Source(), sj.Error())
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("Timeout was not applied")
	}
}

func TestMerge(t *testing.T) {
	judgments := []*model.SourceJudgment{
		model.NewSourceJudgment("a", model.NewJudgment(90, "true", ""), ""),
		model.NewSourceJudgment("b", nil, "timeout"),
		model.NewSourceJudgment("c", model.NewJudgment(61, "mostly true", ""), ""),
	}
	cred := oracle.Merge(judgments)
	if cred.Score() != 76 {
		t.Errorf("Wrong merged score: %v", cred.Score())
	}
	if cred.Verdict() != model.VerdictCredible {
		t.Errorf("Wrong verdict: %v", cred.Verdict())
	}
	if len(cred.Sources()) != 3 {
		t.Errorf("Should keep every source: %v", len(cred.Sources()))
	}

	cred = oracle.Merge([]*model.SourceJudgment{
		model.NewSourceJudgment("a", model.NewJudgment(20, "false", ""), ""),
	})
	if cred.Verdict() != model.VerdictNotCredible {
		t.Errorf("Wrong verdict: %v", cred.Verdict())
	}
	cred = oracle.Merge([]*model.SourceJudgment{
		model.NewSourceJudgment("a", model.NewJudgment(50, "", ""), ""),
	})
	if cred.Verdict() != model.VerdictMixed {
		t.Errorf("Wrong verdict: %v", cred.Verdict())
	}
}

func TestMergeNoneAvailable(t *testing.T) {
	cred := oracle.Merge([]*model.SourceJudgment{model.NewSourceJudgment("a", nil, "down")})
	if cred.Verdict() != model.VerdictUnknown || cred.Score() != 0 {
		t.Errorf("No judgments should be unknown: %v %v", cred.Verdict(), cred.Score())
	}
	cred = oracle.Merge(nil)
	if cred.Verdict() != model.VerdictUnknown {
		t.Errorf("No oracles should be unknown: %v", cred.Verdict())
	}
}
