package bits

// SampleIdx is a position in a per-channel sample stream.
type SampleIdx uint64

// SampleNum is a number of samples.
type SampleNum uint64

// Add returns the index n samples after i.
func (i SampleIdx) Add(n SampleNum) SampleIdx {
	return i + SampleIdx(n)
}

// Back returns the index n samples before i, clamped at zero.
func (i SampleIdx) Back(n SampleNum) SampleIdx {
	if SampleIdx(n) > i {
		return 0
	}
	return i - SampleIdx(n)
}

// Distance returns the number of samples in [begin, end). It is zero when
// end does not come after begin.
func Distance(begin, end SampleIdx) SampleNum {
	if end <= begin {
		return 0
	}
	return SampleNum(end - begin)
}

// Last returns the index of the last sample of a run of n samples starting
// at first. A zero-length run has no last sample and reports first.
func Last(first SampleIdx, n SampleNum) SampleIdx {
	if n == 0 {
		return first
	}
	return first + SampleIdx(n) - 1
}
