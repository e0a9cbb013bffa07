package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhisek/skillroute/internal/assist"
	"github.com/abhisek/skillroute/internal/pathgen"
	"github.com/abhisek/skillroute/internal/paths"
	"github.com/abhisek/skillroute/internal/tracker"
)

const busyMessage = "a request is already in progress"

// pathView is a stored path with its computed progress.
type pathView struct {
	*paths.LearningPath
	Progress int `json:"progress"`
}

func viewOf(p *paths.LearningPath) pathView {
	return pathView{LearningPath: p, Progress: p.Progress()}
}

// Live handles GET /health/live.
func (s *Server) Live(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListPaths handles GET /api/paths, newest first.
func (s *Server) ListPaths(w http.ResponseWriter, r *http.Request) {
	all := s.store.ListNewestFirst(r.Context())
	views := make([]pathView, len(all))
	for i := range all {
		views[i] = viewOf(&all[i])
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"paths": views,
		"total": len(views),
	})
}

// GetPath handles GET /api/paths/{id}.
func (s *Server) GetPath(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, viewOf(sess.Path()))
}

// CreatePath handles POST /api/paths. Only one generation runs at a time.
func (s *Server) CreatePath(w http.ResponseWriter, r *http.Request) {
	var in paths.Input
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	in = in.Clean()
	if err := in.Validate(); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	if !s.generating.TryStart() {
		s.writeJSON(w, http.StatusConflict, errorBody(busyMessage))
		return
	}
	defer s.generating.Done()

	sess, err := tracker.Create(r.Context(), s.gen, s.store, in, s.sessionOpts()...)
	if err != nil {
		status, body, outcome := generationFailure(err)
		if status == http.StatusInternalServerError {
			s.log.Error("create learning path failed", zap.Error(err))
		}
		s.metrics.RecordGeneration(outcome)
		s.writeJSON(w, status, body)
		return
	}
	s.metrics.RecordGeneration("created")
	s.writeJSON(w, http.StatusCreated, viewOf(sess.Path()))
}

func generationFailure(err error) (int, errResponse, string) {
	var genErr *pathgen.Error
	if errors.As(err, &genErr) {
		body := errResponse{Error: genErr.Message, Title: genErr.Title}
		switch genErr.Kind {
		case pathgen.ConfigMissing:
			return http.StatusServiceUnavailable, body, genErr.Kind.String()
		case pathgen.InsufficientInput:
			return http.StatusUnprocessableEntity, body, genErr.Kind.String()
		default:
			return http.StatusBadGateway, body, genErr.Kind.String()
		}
	}

	var rejected *paths.RejectedError
	if errors.As(err, &rejected) {
		return http.StatusUnprocessableEntity, errResponse{Error: rejected.Message, Title: pathgen.TitleInsufficient}, "rejected"
	}
	if errors.Is(err, paths.ErrEmptyPath) {
		return http.StatusUnprocessableEntity, errResponse{Error: err.Error(), Title: pathgen.TitleInsufficient}, "empty"
	}
	return http.StatusInternalServerError, errorBody("internal error"), "error"
}

// DeletePath handles DELETE /api/paths/{id}?confirm=true.
func (s *Server) DeletePath(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	if err := sess.DeletePath(r.Context(), confirmed(r)); err != nil {
		s.mutationFailed(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type toggleRequest struct {
	Completed  bool   `json:"completed"`
	PhaseTitle string `json:"phaseTitle"`
}

// ToggleStep handles PUT /api/paths/{id}/phases/{phase}/steps/{step}.
func (s *Server) ToggleStep(w http.ResponseWriter, r *http.Request) {
	phase, err1 := strconv.Atoi(chi.URLParam(r, "phase"))
	step, err2 := strconv.Atoi(chi.URLParam(r, "step"))
	if err1 != nil || err2 != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody("phase and step must be integers"))
		return
	}
	var req toggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	if err := sess.ToggleStep(r.Context(), phase, step, req.Completed); err != nil {
		s.mutationFailed(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, viewOf(sess.Path()))
}

// ToggleStepByID handles PUT /api/paths/{id}/steps/{stepID}. The optional
// phaseTitle in the body narrows the lookup to one phase.
func (s *Server) ToggleStepByID(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	if err := sess.ToggleStepByID(r.Context(), req.PhaseTitle, chi.URLParam(r, "stepID"), req.Completed); err != nil {
		s.mutationFailed(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, viewOf(sess.Path()))
}

// AddJournalEntry handles POST /api/paths/{id}/journal.
func (s *Server) AddJournalEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date  string `json:"date"`
		Title string `json:"title"`
		Notes string `json:"notes"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	entry, err := sess.AddJournalEntry(r.Context(), req.Date, req.Title, req.Notes)
	if err != nil {
		s.mutationFailed(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, entry)
}

// DeleteJournalEntry handles DELETE /api/paths/{id}/journal/{entryID}?confirm=true.
func (s *Server) DeleteJournalEntry(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	if err := sess.DeleteJournalEntry(r.Context(), chi.URLParam(r, "entryID"), confirmed(r)); err != nil {
		s.mutationFailed(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Ask handles POST /api/assist. Only one question runs at a time.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string `json:"query"`
		PathTitle string `json:"pathTitle"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	if !s.asking.TryStart() {
		s.writeJSON(w, http.StatusConflict, errorBody(busyMessage))
		return
	}
	defer s.asking.Done()

	answer := s.assist.Ask(r.Context(), req.Query, req.PathTitle)
	s.metrics.RecordAssist(assistOutcome(answer))
	s.writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func assistOutcome(answer string) string {
	switch answer {
	case assist.MsgEmptyQuery:
		return "empty_query"
	case assist.MsgNotConfigured, assist.MsgConfigIssue:
		return "config"
	case assist.MsgGeneric:
		return "error"
	}
	return "answered"
}

// open loads the path named in the URL, writing a 404 when it is unknown.
func (s *Server) open(w http.ResponseWriter, r *http.Request) (*tracker.Session, bool) {
	sess, err := tracker.Open(r.Context(), s.store, chi.URLParam(r, "id"), s.sessionOpts()...)
	if err != nil {
		s.writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		return nil, false
	}
	return sess, true
}

func (s *Server) mutationFailed(w http.ResponseWriter, err error) {
	switch {
	case tracker.IsValidation(err):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	case errors.Is(err, tracker.ErrNotConfirmed):
		s.writeJSON(w, http.StatusBadRequest, errorBody("confirmation required: repeat with ?confirm=true"))
	case errors.Is(err, tracker.ErrStepOutOfRange), errors.Is(err, tracker.ErrStepNotFound), errors.Is(err, tracker.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	default:
		s.log.Error("path mutation failed", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func confirmed(r *http.Request) tracker.Confirmer {
	ok, _ := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get("confirm")))
	return tracker.ConfirmFunc(func(string) bool { return ok })
}
