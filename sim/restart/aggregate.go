// Package restart assembles the fixed-layout restart arrays of a report step
// from the schedule, the live well solution and the summary state, encodes
// them as Fortran-unformatted records and archives them.
package restart

import (
	"fmt"

	"github.com/resvsim/schedule-sim/sim/data"
	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/summary"
)

// Aggregate is the complete restart content of one report step.
type Aggregate struct {
	Header Header
	Wells  *WellData
	Groups *GroupData
	Conns  *ConnectionData
	UDQ    *UDQData
}

// Build aggregates report step step. Static fields come from the schedule
// snapshots at step, dynamic ones from wells and st.
func Build(sched *schedule.Schedule, step int, dims Dims, wells data.Wells, st *summary.State) (*Aggregate, error) {
	h, err := NewHeader(sched, step, dims)
	if err != nil {
		return nil, fmt.Errorf("restart header: %w", err)
	}
	agg := &Aggregate{Header: h}
	if agg.Wells, err = AggregateWellData(h, sched, step, wells, st); err != nil {
		return nil, fmt.Errorf("restart well data: %w", err)
	}
	if agg.Groups, err = AggregateGroupData(h, sched, step, st); err != nil {
		return nil, fmt.Errorf("restart group data: %w", err)
	}
	if agg.Conns, err = AggregateConnectionData(h, sched, step, wells); err != nil {
		return nil, fmt.Errorf("restart connection data: %w", err)
	}
	if agg.UDQ, err = AggregateUDQData(h, sched, step, st); err != nil {
		return nil, fmt.Errorf("restart udq data: %w", err)
	}
	return agg, nil
}

// Arrays lists the arrays in file order.
func (a *Aggregate) Arrays() []Array {
	arrays := []Array{
		IntArray("INTEHEAD", a.Header.IntHead()),
		DoubArray("DOUBHEAD", a.Header.DoubHead()),
		IntArray("IGRP", a.Groups.IGrp.Data()),
		RealArray("SGRP", a.Groups.SGrp.Data()),
		DoubArray("XGRP", a.Groups.XGrp.Data()),
		CharArray("ZGRP", a.Groups.ZGrp.Data()),
		IntArray("IWEL", a.Wells.IWel.Data()),
		RealArray("SWEL", a.Wells.SWel.Data()),
		DoubArray("XWEL", a.Wells.XWel.Data()),
		CharArray("ZWEL", a.Wells.ZWel.Data()),
		IntArray("ICON", a.Conns.ICon.Data()),
		RealArray("SCON", a.Conns.SCon.Data()),
		DoubArray("XCON", a.Conns.XCon.Data()),
	}
	if a.UDQ != nil && a.UDQ.IUDQ.NumWindows() > 0 {
		arrays = append(arrays,
			CharArray("ZUDN", a.UDQ.ZUDN.Data()),
			IntArray("IUDQ", a.UDQ.IUDQ.Data()),
			DoubArray("DUDW", a.UDQ.DUDW.Data()),
			DoubArray("DUDG", a.UDQ.DUDG.Data()),
			DoubArray("DUDF", a.UDQ.DUDF),
		)
	}
	return arrays
}
