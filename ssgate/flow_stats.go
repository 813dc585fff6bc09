package ssgate

type noopFlowStats struct{}

func (n noopFlowStats) AddTx(_ uint64) {}

func (n noopFlowStats) AddRx(_ uint64) {}

type multiFlowStats []FlowStats

func (m multiFlowStats) AddTx(n uint64) {
	for _, sink := range m {
		sink.AddTx(n)
	}
}

func (m multiFlowStats) AddRx(n uint64) {
	for _, sink := range m {
		sink.AddRx(n)
	}
}

// CombineFlowStats fans increments out to several sinks.
func CombineFlowStats(sinks ...FlowStats) FlowStats {
	if len(sinks) == 1 {
		return sinks[0]
	}

	return multiFlowStats(sinks)
}
