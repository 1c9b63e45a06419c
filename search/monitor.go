package search

// RankMonitor provides hooks to observe the ranking pipeline.
// Implement this interface to track intermediate steps, timings and results.
type RankMonitor interface {
	Start(query string)
	MemoHit(query string)
	AfterFilter(candidates int)
	AfterScore(matched int)
	Finish(results []Result)
}

// noopMonitor is a no-op implementation of RankMonitor
type noopMonitor struct{}

var _ RankMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)    {}
func (n *noopMonitor) MemoHit(_ string)  {}
func (n *noopMonitor) AfterFilter(_ int) {}
func (n *noopMonitor) AfterScore(_ int)  {}
func (n *noopMonitor) Finish(_ []Result) {}
