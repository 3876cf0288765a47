package metrics

import "github.com/logiclink/logiclink/pkg/bufpool"

// PoolStats returns the counters of a buffer pool. Both *bufpool.Pool's
// Stats method and bufpool.GlobalStats fit.
type PoolStats func() bufpool.Stats
