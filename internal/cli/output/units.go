package output

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Bytes formats n with binary prefixes ("16 KiB").
func Bytes(n uint64) string { return humanize.IBytes(n) }

// Count formats n with thousands separators.
func Count(n uint64) string { return humanize.Comma(int64(n)) }

// Samples formats a sample count with SI prefixes ("2.5 M").
func Samples(n uint64) string {
	v, prefix := humanize.ComputeSI(float64(n))
	if prefix == "" {
		return fmt.Sprintf("%d", n)
	}
	return humanize.FtoaWithDigits(v, 2) + " " + prefix
}

// Rate formats a bit rate given in Mbit/s.
func Rate(mbps float64) string { return fmt.Sprintf("%.2f Mbit/s", mbps) }

// Duration rounds d for display; sub-second values keep milliseconds.
func Duration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}
