package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ratio lets through keep out of every n events. A zero ratio lets everything through.
type ratio struct {
	keep, n int
}

var defaultDebugRatio = ratio{keep: 1, n: 50}

// parseRatio reads "k/n", "n" (one in n) or "k:n". "0", "off" and "all"
// disable sampling. ok is false when spec is malformed.
func parseRatio(spec string) (ratio, bool) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	switch spec {
	case "":
		return defaultDebugRatio, true
	case "0", "off", "all":
		return ratio{}, true
	}
	head, tail, split := strings.Cut(strings.ReplaceAll(spec, ":", "/"), "/")
	if !split {
		n, err := strconv.Atoi(head)
		if err != nil || n < 0 {
			return ratio{}, false
		}
		return ratio{keep: 1, n: n}, true
	}
	keep, err1 := strconv.Atoi(strings.TrimSpace(head))
	n, err2 := strconv.Atoi(strings.TrimSpace(tail))
	if err1 != nil || err2 != nil || keep <= 0 || n <= 0 {
		return ratio{}, false
	}
	return ratio{keep: min(keep, n), n: n}, true
}

// sampler applies a ratio deterministically: the first keep events of
// every window of n pass.
type sampler struct {
	r     atomic.Pointer[ratio]
	count atomic.Uint64
}

func newSampler(r ratio) *sampler {
	s := &sampler{}
	s.set(r)
	return s
}

func (s *sampler) set(r ratio) {
	s.r.Store(&r)
	s.count.Store(0)
}

func (s *sampler) allow() bool {
	r := s.r.Load()
	if r == nil || r.keep <= 0 || r.n <= 0 {
		return true
	}
	pos := (s.count.Add(1) - 1) % uint64(r.n)
	return pos < uint64(r.keep)
}
