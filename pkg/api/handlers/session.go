package handlers

import (
	"net/http"

	"github.com/logiclink/logiclink/pkg/acquisition"
)

// Session is a running capture.
type Session interface {
	ID() string
	Stats() acquisition.Stats
}

// SessionStatus is the JSON form of a capture's counters.
type SessionStatus struct {
	ID         string  `json:"id"`
	Running    bool    `json:"running"`
	DurationMs int64   `json:"duration_ms"`
	Bytes      uint64  `json:"bytes"`
	Blocks     uint64  `json:"blocks"`
	Corrupt    uint64  `json:"corrupt"`
	Discarded  uint64  `json:"discarded"`
	Overruns   uint64  `json:"overruns"`
	Samples    uint64  `json:"samples"`
	Mbps       float64 `json:"mbps"`
	Throughput float64 `json:"transport_mbytes_per_sec"`
}

// SessionHandler serves GET /api/v1/session.
type SessionHandler struct {
	session Session
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(s Session) *SessionHandler {
	return &SessionHandler{session: s}
}

// Get handles GET /api/v1/session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.session == nil {
		NotFound(w, "no capture session")
		return
	}
	st := h.session.Stats()
	WriteJSON(w, http.StatusOK, SessionStatus{
		ID:         h.session.ID(),
		Running:    !st.Start.IsZero() && st.Stop.IsZero(),
		DurationMs: st.Duration().Milliseconds(),
		Bytes:      st.Bytes,
		Blocks:     st.Blocks,
		Corrupt:    st.Corrupt,
		Discarded:  st.Discarded,
		Overruns:   st.Overruns,
		Samples:    st.Samples,
		Mbps:       st.Mbps(),
		Throughput: st.Throughput,
	})
}
