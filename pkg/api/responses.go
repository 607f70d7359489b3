package api // import "github.com/joincivil/civil-content-registry/pkg/api"

import (
	"encoding/json"
	"net/http"

	log "github.com/golang/glog"

	"github.com/joincivil/civil-content-registry/pkg/model"
	"github.com/joincivil/civil-content-registry/pkg/search"
	"github.com/joincivil/civil-content-registry/pkg/verification"
)

// RecordResponse is the JSON form of a content record
type RecordResponse struct {
	Fingerprint     string `json:"fingerprint"`
	Publisher       string `json:"publisher"`
	Category        string `json:"category"`
	MetadataPointer string `json:"metadataPointer"`
	Timestamp       int64  `json:"timestamp"`
}

func newRecordResponse(record *model.ContentRecord) *RecordResponse {
	if record == nil {
		return nil
	}
	return &RecordResponse{
		Fingerprint:     record.Fingerprint().Hex(),
		Publisher:       record.Publisher().Hex(),
		Category:        record.Category().String(),
		MetadataPointer: record.MetadataPointer(),
		Timestamp:       record.Timestamp(),
	}
}

// VerificationResponse is the JSON form of a registry verify or lookup
type VerificationResponse struct {
	Fingerprint     string `json:"fingerprint"`
	Exists          bool   `json:"exists"`
	Publisher       string `json:"publisher"`
	Timestamp       int64  `json:"timestamp"`
	Category        string `json:"category"`
	MetadataPointer string `json:"metadataPointer"`
}

func newVerificationResponse(result *model.VerificationResult) *VerificationResponse {
	return &VerificationResponse{
		Fingerprint:     result.Fingerprint().Hex(),
		Exists:          result.Exists(),
		Publisher:       result.Publisher().Hex(),
		Timestamp:       result.Timestamp(),
		Category:        result.Category().String(),
		MetadataPointer: result.MetadataPointer(),
	}
}

// ReputationResponse is the JSON form of a publisher reputation
type ReputationResponse struct {
	Publisher          string `json:"publisher"`
	TotalRegistrations uint64 `json:"totalRegistrations"`
	VerificationCount  uint64 `json:"verificationCount"`
	ReputationScore    uint64 `json:"reputationScore"`
}

// StatsResponse holds the global registry counters
type StatsResponse struct {
	TotalRegistrations uint64 `json:"totalRegistrations"`
	Paused             bool   `json:"paused"`
}

// EventResponse is the JSON form of a registry event
type EventResponse struct {
	Sequence        uint64 `json:"sequence"`
	EventType       string `json:"eventType"`
	Fingerprint     string `json:"fingerprint"`
	Account         string `json:"account"`
	Existed         bool   `json:"existed"`
	Timestamp       int64  `json:"timestamp"`
	Category        string `json:"category,omitempty"`
	MetadataPointer string `json:"metadataPointer,omitempty"`
	BlockNumber     uint64 `json:"blockNumber,omitempty"`
	TxHash          string `json:"txHash,omitempty"`
}

func newEventResponse(event *model.RegistryEvent) *EventResponse {
	resp := &EventResponse{
		Sequence:        event.Sequence(),
		EventType:       string(event.EventType()),
		Fingerprint:     event.Fingerprint().Hex(),
		Account:         event.Account().Hex(),
		Existed:         event.Existed(),
		Timestamp:       event.Timestamp(),
		Category:        event.Category().String(),
		MetadataPointer: event.MetadataPointer(),
		BlockNumber:     event.BlockData().BlockNumber(),
	}
	if resp.BlockNumber != 0 {
		resp.TxHash = event.BlockData().TxHash().Hex()
	}
	return resp
}

// MatchResponse is one fuzzy search match
type MatchResponse struct {
	Record   *RecordResponse        `json:"record"`
	Metadata *model.ContentMetadata `json:"metadata"`
	Score    int                    `json:"score"`
}

func newMatchResponses(matches []*search.Match) []*MatchResponse {
	resp := make([]*MatchResponse, len(matches))
	for i, m := range matches {
		resp[i] = &MatchResponse{Record: newRecordResponse(m.Record), Metadata: m.Metadata, Score: m.Score}
	}
	return resp
}

// SourceJudgmentResponse is one oracle's contribution to a credibility verdict
type SourceJudgmentResponse struct {
	Source    string `json:"source"`
	Available bool   `json:"available"`
	Score     int    `json:"score,omitempty"`
	Verdict   string `json:"verdict,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Error     string `json:"error,omitempty"`
}

// CredibilityResponse is the merged oracle verdict
type CredibilityResponse struct {
	Score   int                       `json:"score"`
	Verdict string                    `json:"verdict"`
	Sources []*SourceJudgmentResponse `json:"sources"`
}

func newCredibilityResponse(c *model.Credibility) *CredibilityResponse {
	if c == nil {
		return nil
	}
	resp := &CredibilityResponse{Score: c.Score(), Verdict: c.Verdict(),
		Sources: []*SourceJudgmentResponse{}}
	for _, s := range c.Sources() {
		sr := &SourceJudgmentResponse{Source: s.Source(), Available: s.Available(), Error: s.Error()}
		if j := s.Judgment(); j != nil {
			sr.Score = j.Score()
			sr.Verdict = j.Verdict()
			sr.Summary = j.Summary()
		}
		resp.Sources = append(resp.Sources, sr)
	}
	return resp
}

// OrchestratedResponse is the consolidated verification verdict
type OrchestratedResponse struct {
	RequestID   string                 `json:"requestId"`
	Fingerprint string                 `json:"fingerprint"`
	Status      string                 `json:"status"`
	Record      *RecordResponse        `json:"record,omitempty"`
	Metadata    *model.ContentMetadata `json:"metadata,omitempty"`
	Matches     []*MatchResponse       `json:"matches"`
	Credibility *CredibilityResponse   `json:"credibility,omitempty"`
	Unavailable []string               `json:"unavailable"`
}

func newOrchestratedResponse(result *verification.Result) *OrchestratedResponse {
	unavailable := result.Unavailable
	if unavailable == nil {
		unavailable = []string{}
	}
	return &OrchestratedResponse{
		RequestID:   result.RequestID,
		Fingerprint: result.Fingerprint.Hex(),
		Status:      string(result.Status),
		Record:      newRecordResponse(result.Record),
		Metadata:    result.Metadata,
		Matches:     newMatchResponses(result.Matches),
		Credibility: newCredibilityResponse(result.Credibility),
		Unavailable: unavailable,
	}
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func statusForKind(kind model.ErrorKind) int {
	switch kind {
	case model.ErrorKindValidation:
		return http.StatusBadRequest
	case model.ErrorKindConflict:
		return http.StatusConflict
	case model.ErrorKindAuthorization:
		return http.StatusForbidden
	case model.ErrorKindAvailability:
		return http.StatusServiceUnavailable
	case model.ErrorKindDependency:
		return http.StatusBadGateway
	case model.ErrorKindReadOnly:
		return http.StatusMethodNotAllowed
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		log.Errorf("Error writing response: err: %v", err)
	}
}

// writeError writes err with the status matching its kind. Internal errors
// are logged and not echoed to the client.
func writeError(w http.ResponseWriter, err error) {
	kind := model.KindOfError(err)
	status := statusForKind(kind)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Errorf("Internal error: err: %v", err)
		msg = "internal error"
	}
	writeJSON(w, status, &ErrorResponse{Error: msg, Kind: string(kind)})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, &ErrorResponse{Error: msg, Kind: string(model.ErrorKindValidation)})
}
