package api

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/okian/motionlab/internal/adapters/wshub"
	"github.com/okian/motionlab/pkg/logger"
)

// analysisRequest mirrors the OpenAPI schema for POST /api/analysis and
// PUT /api/analysis/type.
type analysisRequest struct {
	Type string `json:"type"`
}

// analysisHandler starts runs and streams their progress.
type analysisHandler struct {
	deps    Dependencies
	hub     *wshub.Hub
	origins []string
	logger  logger.Logger
}

// HandleState handles GET /api/state.
func (h *analysisHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.State(clientIDFrom(r)))
}

// HandleSelectType handles PUT /api/analysis/type.
func (h *analysisHandler) HandleSelectType(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, err)
		return
	}
	st, err := h.deps.SelectType(r.Context(), clientIDFrom(r), req.Type)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleStart handles POST /api/analysis. The run continues after the
// request returns; follow it on the progress stream or poll /api/state.
func (h *analysisHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, err)
		return
	}
	st, err := h.deps.StartAnalysis(r.Context(), clientIDFrom(r), req.Type)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, st)
}

// HandleProgress handles GET /api/analysis/progress as a websocket that
// receives every run update for the client. Closing it does not stop a run.
func (h *analysisHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{}
	if len(h.origins) == 1 && h.origins[0] == "*" {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = h.origins
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		h.logger.Warn(r.Context(), "progress stream upgrade failed", logger.Error(err))
		return
	}

	l := wshub.NewListener(uuid.NewString(), clientIDFrom(r), conn)
	h.hub.Register(l)
	defer func() {
		h.hub.Unregister(l.ID)
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}()

	// The client never sends; CloseRead ends ctx when it disconnects.
	ctx := conn.CloseRead(r.Context())
	l.WritePump(ctx)
}
