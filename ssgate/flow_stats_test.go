package ssgate_test

import (
	"testing"

	"github.com/ssocks/ssgate/internal/testlib"
	"github.com/ssocks/ssgate/ssgate"
)

func TestCombineFlowStats_FanOut(t *testing.T) {
	first := &testlib.FlowStatsMock{}
	second := &testlib.FlowStatsMock{}

	first.On("AddTx", uint64(10)).Once()
	first.On("AddRx", uint64(20)).Once()
	second.On("AddTx", uint64(10)).Once()
	second.On("AddRx", uint64(20)).Once()

	combined := ssgate.CombineFlowStats(first, second)

	combined.AddTx(10)
	combined.AddRx(20)

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestCombineFlowStats_SingleSinkPassthrough(t *testing.T) {
	sink := &testlib.FlowStatsMock{}
	sink.On("AddTx", uint64(1)).Once()

	ssgate.CombineFlowStats(sink).AddTx(1)

	sink.AssertExpectations(t)
}
