// Package api serves the content registry over HTTP
package api // import "github.com/joincivil/civil-content-registry/pkg/api"

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-content-registry/pkg/fingerprint"
	"github.com/joincivil/civil-content-registry/pkg/model"
	"github.com/joincivil/civil-content-registry/pkg/search"
	"github.com/joincivil/civil-content-registry/pkg/verification"
)

const (
	// AccountHeader carries the caller address set by the wallet gateway
	AccountHeader = "X-Account"

	defaultRequestTimeout = 60 * time.Second
	maxBodySize           = 32 << 20
	maxEventCount         = 1000
)

// Registry is the registry surface served by the API
type Registry interface {
	Register(caller common.Address, fingerprint common.Hash, category model.Category,
		metadataPointer string) (*model.ContentRecord, error)
	Verify(caller common.Address, fingerprint common.Hash) (*model.VerificationResult, error)
	Lookup(fingerprint common.Hash) (*model.VerificationResult, error)
	PublisherContent(publisher common.Address) ([]common.Hash, error)
	PublisherReputation(publisher common.Address) (*model.PublisherReputation, error)
	TotalRegistrations() (uint64, error)
	Events(criteria *model.RegistryEventCriteria) ([]*model.RegistryEvent, error)
	Paused() (bool, error)
	Pause(caller common.Address) error
	Unpause(caller common.Address) error
}

// Verifier runs orchestrated verification
type Verifier interface {
	Verify(ctx context.Context, input *verification.Input) (*verification.Result, error)
}

// Searcher runs fuzzy search over registered titles
type Searcher interface {
	Search(ctx context.Context, query string) ([]*search.Match, error)
}

// Config configures a Handler. Gatherer defaults to the prometheus default
// gatherer.
type Config struct {
	Registry       Registry
	Verifier       Verifier
	Searcher       Searcher
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
}

// NewHandler returns a Handler for config
func NewHandler(config *Config) *Handler {
	gatherer := config.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Handler{
		registry: config.Registry,
		verifier: config.Verifier,
		searcher: config.Searcher,
		gatherer: gatherer,
		timeout:  timeout,
	}
}

// Handler wires the registry endpoints
type Handler struct {
	registry Registry
	verifier Verifier
	searcher Searcher
	gatherer prometheus.Gatherer
	timeout  time.Duration
}

// Router returns the chi router serving all endpoints
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(h.timeout))

		r.Get("/content/{fingerprint}", h.handleLookup)
		r.Get("/search", h.handleSearch)
		r.Get("/publishers/{address}/content", h.handlePublisherContent)
		r.Get("/publishers/{address}/reputation", h.handlePublisherReputation)
		r.Get("/stats", h.handleStats)
		r.Get("/events", h.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(requireAccount)
			r.Post("/content", h.handleRegister)
			r.Post("/content/{fingerprint}/verify", h.handleVerify)
			r.Post("/verify", h.handleOrchestratedVerify)
			r.Post("/admin/pause", h.handlePause)
			r.Post("/admin/unpause", h.handleUnpause)
		})
	})
	return r
}

type accountKey struct{}

// requireAccount rejects requests without a valid account header
func requireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hexAddr := strings.TrimSpace(r.Header.Get(AccountHeader))
		if !common.IsHexAddress(hexAddr) {
			writeJSON(w, http.StatusUnauthorized, &ErrorResponse{Error: "missing or invalid " + AccountHeader})
			return
		}
		ctx := context.WithValue(r.Context(), accountKey{}, common.HexToAddress(hexAddr))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func account(ctx context.Context) common.Address {
	addr, _ := ctx.Value(accountKey{}).(common.Address)
	return addr
}

// RegisterRequest is the body of POST /v1/content. Text is fingerprinted when
// no fingerprint is given.
type RegisterRequest struct {
	Fingerprint     string `json:"fingerprint"`
	Text            string `json:"text"`
	Category        string `json:"category"`
	MetadataPointer string `json:"metadataPointer"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	req := &RegisterRequest{}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(req)
	if err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	var fp common.Hash
	switch {
	case req.Fingerprint != "":
		fp, err = fingerprint.Parse(req.Fingerprint)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
	case req.Text != "":
		fp = fingerprint.FromText(req.Text)
	}
	category, err := model.CategoryFromName(req.Category)
	if err != nil {
		category = model.Category(req.Category)
	}

	record, err := h.registry.Register(account(r.Context()), fp, category, req.MetadataPointer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newRecordResponse(record))
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	fp, ok := fingerprintParam(w, r)
	if !ok {
		return
	}
	result, err := h.registry.Lookup(fp)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if !result.Exists() {
		status = http.StatusNotFound
	}
	writeJSON(w, status, newVerificationResponse(result))
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	fp, ok := fingerprintParam(w, r)
	if !ok {
		return
	}
	result, err := h.registry.Verify(account(r.Context()), fp)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newVerificationResponse(result))
}

// OrchestratedRequest is the JSON body of POST /v1/verify. Any other content
// type is read as raw file bytes.
type OrchestratedRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleOrchestratedVerify(w http.ResponseWriter, r *http.Request) {
	input := &verification.Input{Caller: account(r.Context())}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeBadRequest(w, "error reading body")
		return
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		req := &OrchestratedRequest{}
		if err := json.Unmarshal(body, req); err != nil {
			writeBadRequest(w, "invalid request body")
			return
		}
		input.Text = req.Text
	} else {
		input.Data = body
	}

	result, err := h.verifier.Verify(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrchestratedResponse(result))
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeBadRequest(w, "missing query")
		return
	}
	matches, err := h.searcher.Search(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newMatchResponses(matches))
}

func (h *Handler) handlePublisherContent(w http.ResponseWriter, r *http.Request) {
	publisher, ok := addressParam(w, r)
	if !ok {
		return
	}
	hashes, err := h.registry.PublisherContent(publisher)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]string, len(hashes))
	for i, hash := range hashes {
		resp[i] = hash.Hex()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePublisherReputation(w http.ResponseWriter, r *http.Request) {
	publisher, ok := addressParam(w, r)
	if !ok {
		return
	}
	rep, err := h.registry.PublisherReputation(publisher)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &ReputationResponse{
		Publisher:          publisher.Hex(),
		TotalRegistrations: rep.TotalRegistrations(),
		VerificationCount:  rep.VerificationCount(),
		ReputationScore:    rep.ReputationScore(),
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	total, err := h.registry.TotalRegistrations()
	if err != nil {
		writeError(w, err)
		return
	}
	paused, err := h.registry.Paused()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &StatsResponse{TotalRegistrations: total, Paused: paused})
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	criteria := &model.RegistryEventCriteria{Count: 100}
	q := r.URL.Query()
	if from := q.Get("from"); from != "" {
		seq, err := strconv.ParseUint(from, 10, 64)
		if err != nil {
			writeBadRequest(w, "invalid from")
			return
		}
		criteria.FromSequence = seq
	}
	if count := q.Get("count"); count != "" {
		n, err := strconv.Atoi(count)
		if err != nil || n <= 0 || n > maxEventCount {
			writeBadRequest(w, "invalid count")
			return
		}
		criteria.Count = n
	}
	if eventType := q.Get("type"); eventType != "" {
		criteria.EventType = model.RegistryEventType(eventType)
	}
	events, err := h.registry.Events(criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]*EventResponse, len(events))
	for i, event := range events {
		resp[i] = newEventResponse(event)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Pause(account(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &StatsResponse{Paused: true})
}

func (h *Handler) handleUnpause(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Unpause(account(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &StatsResponse{Paused: false})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok")) // nolint: errcheck
}

func fingerprintParam(w http.ResponseWriter, r *http.Request) (common.Hash, bool) {
	fp, err := fingerprint.Parse(chi.URLParam(r, "fingerprint"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return common.Hash{}, false
	}
	return fp, true
}

func addressParam(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	hexAddr := chi.URLParam(r, "address")
	if !common.IsHexAddress(hexAddr) {
		writeBadRequest(w, "invalid address")
		return common.Address{}, false
	}
	return common.HexToAddress(hexAddr), true
}
