package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/htlin222/gkahoot/internal/app"
	"github.com/htlin222/gkahoot/internal/catalog"
	"github.com/htlin222/gkahoot/internal/domain"
)

// Handler exposes the quiz session over HTTP: catalog upload, question
// navigation, on-demand scoring, stats, rankings, and a websocket stream of
// leaderboard snapshots.
type Handler struct {
	session *app.QuizSession
}

func NewHandler(session *app.QuizSession) *Handler {
	return &Handler{session: session}
}

// Register wires all routes into mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/catalog", h.handleCatalog)
	mux.HandleFunc("/template", h.handleTemplate)
	mux.HandleFunc("/question", h.handleQuestion)
	mux.HandleFunc("/question/next", h.handleStep(1))
	mux.HandleFunc("/question/prev", h.handleStep(-1))
	mux.HandleFunc("/score", h.handleScore)
	mux.HandleFunc("/stats", h.handleStats)
	mux.HandleFunc("/rankings", h.handleRankings)
	mux.HandleFunc("/ws", h.ServeWS)
}

func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := catalogBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer body.Close()

	questions, err := h.session.LoadCatalog(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"questions": len(questions),
		"first":     questions[0].Index,
	})
}

// catalogBody accepts either a multipart upload (field "file") or a raw CSV
// request body.
func catalogBody(r *http.Request) (io.ReadCloser, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New("missing csv upload in field \"file\"")
		}
		return file, nil
	}
	return r.Body, nil
}

func (h *Handler) handleTemplate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="questions_template.csv"`)
	if err := catalog.WriteTemplate(w); err != nil {
		log.Printf("template write failed: %v", err)
	}
}

func (h *Handler) handleQuestion(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		question, err := h.session.CurrentQuestion()
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		pos, total := h.session.Position()
		payload := map[string]any{
			"index":    question.Index,
			"link":     question.Link,
			"position": pos,
			"total":    total,
		}
		// The answer stays hidden until the presenter reveals it.
		if r.URL.Query().Get("reveal") == "1" {
			payload["ans"] = question.Answer
		}
		writeJSON(w, http.StatusOK, payload)
	case http.MethodPut:
		var req struct {
			Position int `json:"position"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid position payload"))
			return
		}
		if err := h.session.SetPosition(req.Position); err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"position": req.Position})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleStep(delta int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var (
			question domain.Question
			err      error
		)
		if delta > 0 {
			question, err = h.session.Next()
		} else {
			question, err = h.session.Prev()
		}
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		pos, total := h.session.Position()
		writeJSON(w, http.StatusOK, map[string]any{
			"index":    question.Index,
			"position": pos,
			"total":    total,
		})
	}
}

func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	stats, err := h.session.ScoreCurrent(r.Context())
	if err != nil {
		writeError(w, scoreStatusCode(err), err)
		return
	}
	writeStats(w, stats)
}

// scoreStatusCode maps scoring failures onto HTTP statuses; every one of
// them is recoverable by the operator retrying.
func scoreStatusCode(err error) int {
	var fetchErr *domain.FetchError
	var parseErr *domain.ParseError
	switch {
	case errors.Is(err, domain.ErrScoringInFlight), errors.Is(err, domain.ErrCatalogReloaded):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoQuestion):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmptyFeed):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr), errors.As(err, &parseErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeStats(w, h.session.CurrentStats())
}

func (h *Handler) handleRankings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rankings": h.session.Rankings()})
}

func writeStats(w http.ResponseWriter, stats domain.Stats) {
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":       stats,
		"successRate": stats.SuccessRate(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
