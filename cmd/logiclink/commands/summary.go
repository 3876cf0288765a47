package commands

import (
	"fmt"
	"io"

	"github.com/logiclink/logiclink/internal/cli/output"
	"github.com/logiclink/logiclink/pkg/acquisition"
	"github.com/logiclink/logiclink/pkg/backend"
)

// LevelSummary is the occupancy of one zoom level.
type LevelSummary struct {
	Level   int    `json:"level" yaml:"level"`
	ZoomOut int    `json:"zoom_out" yaml:"zoom_out"`
	Blocks  int    `json:"blocks" yaml:"blocks"`
	Bytes   int    `json:"bytes" yaml:"bytes"`
	End     uint64 `json:"end" yaml:"end"`
}

// Summary is printed when a capture ends.
type Summary struct {
	Session    string         `json:"session" yaml:"session"`
	DurationMs int64          `json:"duration_ms" yaml:"duration_ms"`
	Blocks     uint64         `json:"blocks" yaml:"blocks"`
	Bytes      uint64         `json:"bytes" yaml:"bytes"`
	Samples    uint64         `json:"samples" yaml:"samples"`
	Discarded  uint64         `json:"discarded" yaml:"discarded"`
	Corrupt    uint64         `json:"corrupt" yaml:"corrupt"`
	Overruns   uint64         `json:"overruns" yaml:"overruns"`
	Mbps       float64        `json:"mbps" yaml:"mbps"`
	Levels     []LevelSummary `json:"levels" yaml:"levels"`

	stats acquisition.Stats
}

func newSummary(id string, st acquisition.Stats, levels []backend.LevelStats) *Summary {
	s := &Summary{
		Session:    id,
		DurationMs: st.Duration().Milliseconds(),
		Blocks:     st.Blocks,
		Bytes:      st.Bytes,
		Samples:    st.Samples,
		Discarded:  st.Discarded,
		Corrupt:    st.Corrupt,
		Overruns:   st.Overruns,
		Mbps:       st.Mbps(),
		Levels:     make([]LevelSummary, len(levels)),
		stats:      st,
	}
	for i, l := range levels {
		s.Levels[i] = LevelSummary{
			Level:   l.Level,
			ZoomOut: l.ZoomOut,
			Blocks:  l.Blocks,
			Bytes:   l.Bytes,
			End:     uint64(l.End),
		}
	}
	return s
}

// Headers implements output.TableRenderer for the level table.
func (s *Summary) Headers() []string {
	return []string{"Level", "Zoom out", "Blocks", "Size", "Samples"}
}

// Rows implements output.TableRenderer.
func (s *Summary) Rows() [][]string {
	rows := make([][]string, len(s.Levels))
	for i, l := range s.Levels {
		rows[i] = []string{
			fmt.Sprintf("%d", l.Level),
			fmt.Sprintf("1:%d", l.ZoomOut),
			output.Count(uint64(l.Blocks)),
			output.Bytes(uint64(l.Bytes)),
			output.Samples(l.End),
		}
	}
	return rows
}

func (s *Summary) pairs() [][2]string {
	return [][2]string{
		{"Session", s.Session},
		{"Duration", output.Duration(s.stats.Duration())},
		{"Blocks", output.Count(s.Blocks)},
		{"Received", output.Bytes(s.Bytes)},
		{"Samples/channel", output.Samples(s.Samples)},
		{"Discarded", output.Count(s.Discarded)},
		{"Corrupt", output.Count(s.Corrupt)},
		{"Overruns", output.Count(s.Overruns)},
		{"Rate", output.Rate(s.Mbps)},
	}
}

// printSummary writes the session counters followed by the level table,
// or the whole summary as one JSON or YAML document.
func printSummary(p *output.Printer, s *Summary) error {
	if p.Format() != output.FormatTable {
		return p.Print(s)
	}
	w := p.Writer()
	if err := output.SimpleTable(w, s.pairs()); err != nil {
		return err
	}
	_, _ = io.WriteString(w, "\n")
	return output.PrintTable(w, s)
}
