package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/logiclink/logiclink/pkg/backend"
	"github.com/logiclink/logiclink/pkg/bits"
)

// MaxSamples bounds the window of one channel request.
const MaxSamples = 1 << 20

// Store is the read side of the sample store.
type Store interface {
	GroupsNumber() int
	ChannelsNumber(group int) (int, error)
	ChannelLength(group int) (bits.SampleNum, error)
	Levels(group int) ([]backend.LevelStats, error)
	SampleRate() uint64
}

// Sampler extracts full resolution windows of one channel.
type Sampler interface {
	Channel(group, channel int, begin bits.SampleIdx, length bits.SampleNum) (bits.Span, error)
}

// GroupInfo describes one group.
type GroupInfo struct {
	Group    int         `json:"group"`
	Channels int         `json:"channels"`
	Length   uint64      `json:"length"`
	Levels   []LevelInfo `json:"levels,omitempty"`
}

// LevelInfo describes one zoom level of a group.
type LevelInfo struct {
	Level   int    `json:"level"`
	ZoomOut int    `json:"zoom_out"`
	Blocks  int    `json:"blocks"`
	Bytes   int    `json:"bytes"`
	End     uint64 `json:"end"`
}

// ChannelData is a window of one channel, packed MSB first.
type ChannelData struct {
	Group   int    `json:"group"`
	Channel int    `json:"channel"`
	Begin   uint64 `json:"begin"`
	Bits    int    `json:"bits"`
	Data    []byte `json:"data"`
}

// GroupHandler serves the group endpoints.
type GroupHandler struct {
	store   Store
	sampler Sampler
}

// NewGroupHandler creates a group handler.
func NewGroupHandler(store Store, sampler Sampler) *GroupHandler {
	return &GroupHandler{store: store, sampler: sampler}
}

// List handles GET /api/v1/groups.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	out := make([]GroupInfo, 0, h.store.GroupsNumber())
	for g := range h.store.GroupsNumber() {
		info, err := h.info(g, false)
		if err != nil {
			InternalServerError(w, err.Error())
			return
		}
		out = append(out, info)
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sample_rate": h.store.SampleRate(),
		"groups":      out,
	})
}

// Get handles GET /api/v1/groups/{group}.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, ok := groupParam(w, r)
	if !ok {
		return
	}
	info, err := h.info(g, true)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, info)
}

// Channel handles GET /api/v1/groups/{group}/channels/{channel}?begin=&length=.
func (h *GroupHandler) Channel(w http.ResponseWriter, r *http.Request) {
	g, ok := groupParam(w, r)
	if !ok {
		return
	}
	ch, err := strconv.Atoi(chi.URLParam(r, "channel"))
	if err != nil {
		BadRequest(w, "channel must be an integer")
		return
	}
	begin, err := uintQuery(r, "begin", 0)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}
	length, err := uintQuery(r, "length", 1024)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}
	if length > MaxSamples {
		BadRequest(w, fmt.Sprintf("length exceeds %d samples", MaxSamples))
		return
	}

	span, err := h.sampler.Channel(g, ch, bits.SampleIdx(begin), bits.SampleNum(length))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ChannelData{
		Group:   g,
		Channel: ch,
		Begin:   begin,
		Bits:    span.Len(),
		Data:    span.Bytes(),
	})
}

func (h *GroupHandler) info(g int, withLevels bool) (GroupInfo, error) {
	channels, err := h.store.ChannelsNumber(g)
	if err != nil {
		return GroupInfo{}, err
	}
	length, err := h.store.ChannelLength(g)
	if err != nil {
		return GroupInfo{}, err
	}
	info := GroupInfo{Group: g, Channels: channels, Length: uint64(length)}
	if !withLevels {
		return info, nil
	}

	levels, err := h.store.Levels(g)
	if err != nil {
		return GroupInfo{}, err
	}
	for _, l := range levels {
		info.Levels = append(info.Levels, LevelInfo{
			Level:   l.Level,
			ZoomOut: l.ZoomOut,
			Blocks:  l.Blocks,
			Bytes:   l.Bytes,
			End:     uint64(l.End),
		})
	}
	return info, nil
}
