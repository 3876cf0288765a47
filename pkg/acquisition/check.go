package acquisition

import (
	"github.com/logiclink/logiclink/pkg/bits"
	"github.com/logiclink/logiclink/pkg/rearrange"
)

// Samples is a rearranged raw block, as passed to Check.OnSamples.
type Samples struct {
	rearrange.Samples

	// Group is the backend group the samples were stored in.
	Group int

	// First is the index of the first sample of the block.
	First bits.SampleIdx
}

// Check observes the data flowing through a session, for example to verify
// a known test pattern. Calls come from the session goroutine only.
type Check interface {
	// Start is called before the first block.
	Start()
	// OnRaw is called for every non-empty block after decompression. The
	// buffer is reused once OnRaw returns.
	OnRaw(RawBlock)
	// OnSamples is called for every block after it was stored.
	OnSamples(Samples)
	// Stop is called after the last block.
	Stop()
}

// NopCheck does nothing.
type NopCheck struct{}

func (NopCheck) Start()            {}
func (NopCheck) OnRaw(RawBlock)    {}
func (NopCheck) OnSamples(Samples) {}
func (NopCheck) Stop()             {}

// Checks runs several checks in order.
type Checks []Check

func (cs Checks) Start() {
	for _, c := range cs {
		c.Start()
	}
}

func (cs Checks) OnRaw(b RawBlock) {
	for _, c := range cs {
		c.OnRaw(b)
	}
}

func (cs Checks) OnSamples(s Samples) {
	for _, c := range cs {
		c.OnSamples(s)
	}
}

func (cs Checks) Stop() {
	for _, c := range cs {
		c.Stop()
	}
}
