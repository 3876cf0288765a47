package bits

// Packer accumulates bits MSB-first into bytes. The zero value is ready to
// use. Completed bytes are handed out by Take; a partial byte stays inside
// the Packer until more bits arrive or Flush is called.
type Packer struct {
	out []byte
	cur byte
	n   uint8
}

// Push appends one bit.
func (p *Packer) Push(bit bool) {
	p.cur <<= 1
	if bit {
		p.cur |= 1
	}
	p.n++
	if p.n == 8 {
		p.out = append(p.out, p.cur)
		p.cur, p.n = 0, 0
	}
}

// PushBits appends the n low bits of v, most significant first.
func (p *Packer) PushBits(v byte, n int) {
	if n == 8 && p.n == 0 {
		p.out = append(p.out, v)
		return
	}
	for i := n - 1; i >= 0; i-- {
		p.Push(v>>i&1 == 1)
	}
}

// PushBytes appends whole bytes.
func (p *Packer) PushBytes(b []byte) {
	if p.n == 0 {
		p.out = append(p.out, b...)
		return
	}
	for _, v := range b {
		p.PushBits(v, 8)
	}
}

// Pending returns the number of bits held in the partial byte.
func (p *Packer) Pending() int { return int(p.n) }

// Take returns the completed bytes and forgets them. The partial byte is
// kept.
func (p *Packer) Take() []byte {
	out := p.out
	p.out = nil
	return out
}

// Flush returns all completed bytes followed by the partial byte padded
// with zeros, and resets the Packer.
func (p *Packer) Flush() []byte {
	out := p.out
	if p.n > 0 {
		out = append(out, p.cur<<(8-p.n))
	}
	*p = Packer{}
	return out
}

// Partial returns the bits of the incomplete byte, right aligned, and their
// count.
func (p *Packer) Partial() (byte, int) { return p.cur, int(p.n) }

// Reset discards everything.
func (p *Packer) Reset() { *p = Packer{} }
