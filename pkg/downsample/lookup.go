package downsample

// maxTableStages is the number of halving stages one input byte can pass
// through while still producing at least one whole output bit.
const maxTableStages = 3

// entry is the result of pushing one input byte through the leading
// halving stages.
type entry struct {
	bits   byte  // output bits, right aligned
	phases uint8 // stage phases after the byte, bit i for stage i
}

// tables[t-1][phases][byte] covers the first t halving stages, t in 1..3.
var tables [maxTableStages][1 << maxTableStages][256]entry

func init() {
	for t := 1; t <= maxTableStages; t++ {
		for mask := 0; mask < 1<<t; mask++ {
			for b := 0; b < 256; b++ {
				tables[t-1][mask][b] = reduceByte(byte(b), t, uint8(mask))
			}
		}
	}
}

// reduceByte runs the bitwise path over a single byte with t halving
// stages starting from the given phases.
func reduceByte(b byte, t int, phases uint8) entry {
	st := State{stages: plan(1 << t)}
	st.setPhases(t, phases)
	for j := 7; j >= 0; j-- {
		st.push(0, b>>j&1 == 1)
	}
	v, _ := st.out.Partial()
	return entry{bits: v, phases: st.phases(t)}
}

func (s *State) phases(t int) uint8 {
	var mask uint8
	for i := 0; i < t; i++ {
		if s.stages[i].phase {
			mask |= 1 << i
		}
	}
	return mask
}

func (s *State) setPhases(t int, mask uint8) {
	for i := 0; i < t; i++ {
		s.stages[i].phase = mask>>i&1 == 1
	}
}

// tableStages returns how many leading stages the tables can replace: the
// halving stages, at most three, all of which must sit on a window
// boundary.
func (s *State) tableStages() int {
	t := 0
	for t < maxTableStages && t < len(s.stages) && s.stages[t].factor == 2 {
		if s.stages[t].n != 0 {
			return 0
		}
		t++
	}
	return t
}

// Lookup produces the same output as Generic using precomputed per-byte
// tables. Up to three leading halving stages are applied a byte at a time,
// so factors 2, 4 and 8 map each input byte to 4, 2 or 1 output bits;
// larger factors feed those bits to their remaining stages. Odd factors,
// and states with an open window in a leading stage, use Generic.
func Lookup(in []byte, zoomOut int, st *State) ([]byte, error) {
	if err := checkFactor(zoomOut); err != nil {
		return nil, err
	}
	st.init(zoomOut)

	t := st.tableStages()
	if t == 0 {
		return Generic(in, zoomOut, st)
	}

	table := &tables[t-1]
	width := 8 >> t
	last := t == len(st.stages)
	for _, b := range in {
		e := table[st.phases(t)][b]
		st.setPhases(t, e.phases)
		if last {
			st.out.PushBits(e.bits, width)
			continue
		}
		for j := width - 1; j >= 0; j-- {
			st.push(t, e.bits>>j&1 == 1)
		}
	}

	return st.out.Take(), nil
}
