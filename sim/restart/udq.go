package restart

import (
	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/summary"
)

// UDQData holds the UDQ arrays of a step.
type UDQData struct {
	ZUDN *WindowedArray[string] // keyword, unit
	IUDQ *WindowedArray[int32]  // kind, var type, index within var type
	DUDW *WindowedArray[float64]
	DUDG *WindowedArray[float64]
	DUDF []float64
}

// IUDQ kind codes.
const (
	udqAssignCode int32 = 1
	udqDefineCode int32 = 2
)

// AggregateUDQData fills the UDQ arrays for step. Entities without a value
// get UDQUndefined.
func AggregateUDQData(h Header, sched *schedule.Schedule, step int, st *summary.State) (*UDQData, error) {
	cfg, err := sched.UDQConfig(step)
	if err != nil {
		return nil, err
	}
	inputs := cfg.Inputs()
	ud := &UDQData{}
	if ud.ZUDN, err = NewWindowedArray[string](len(inputs), NZUDNZ, blank); err != nil {
		return nil, err
	}
	if ud.IUDQ, err = NewWindowedArray[int32](len(inputs), NIUDQZ, 0); err != nil {
		return nil, err
	}
	if ud.DUDW, err = NewWindowedArray[float64](h.NWellUDQs, h.NWells, UDQUndefined); err != nil {
		return nil, err
	}
	if ud.DUDG, err = NewWindowedArray[float64](h.NGroupUDQs, h.NGMaxZ, UDQUndefined); err != nil {
		return nil, err
	}
	ud.DUDF = make([]float64, 0, h.NFieldUDQs)

	wells := sched.WellNames(step)
	gslots := groupSlots(sched, step, h)
	var nw, ng, nf int
	for i, in := range inputs {
		zu, _ := ud.ZUDN.Window(i)
		zu[0] = pad8(in.Keyword)
		zu[1] = pad8(in.Unit)
		iu, _ := ud.IUDQ.Window(i)
		iu[0] = udqAssignCode
		if in.IsDefine() {
			iu[0] = udqDefineCode
		}
		iu[1] = int32(in.VarType)

		switch in.VarType {
		case schedule.UDQWell:
			nw++
			iu[2] = int32(nw)
			win, _ := ud.DUDW.Window(nw - 1)
			for slot, w := range wells {
				if v, err := st.GetWellVar(w, in.Keyword); err == nil {
					win[slot] = v
				}
			}
		case schedule.UDQGroup:
			ng++
			iu[2] = int32(ng)
			win, _ := ud.DUDG.Window(ng - 1)
			for g, idx := range gslots {
				if v, err := st.GetGroupVar(g, in.Keyword); err == nil {
					win[idx-1] = v
				}
			}
		case schedule.UDQField:
			nf++
			iu[2] = int32(nf)
			v, err := st.Get(in.Keyword)
			if err != nil {
				v = UDQUndefined
			}
			ud.DUDF = append(ud.DUDF, v)
		}
	}
	return ud, nil
}
