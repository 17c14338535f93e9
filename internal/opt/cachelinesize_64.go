//go:build ticketrw_cachelinesize_64

package opt

// CacheLineSize_ override for builds that want a fixed 64-byte line.
const CacheLineSize_ = 64
