package restart

import (
	"fmt"

	"github.com/resvsim/schedule-sim/sim/data"
	"github.com/resvsim/schedule-sim/sim/schedule"
	"github.com/resvsim/schedule-sim/sim/simerr"
	"github.com/resvsim/schedule-sim/sim/units"
)

// ConnectionData holds the ICON/SCON/XCON arrays. Each well slot owns NCWMAX
// consecutive windows, so connection c of well slot w is window w*NCWMAX+c.
type ConnectionData struct {
	ICon *WindowedArray[int32]
	SCon *WindowedArray[float32]
	XCon *WindowedArray[float64]
}

// connWindow returns the window index of connection c of well slot w.
func connWindow(h Header, w, c int) int { return w*h.NCWMax + c }

// AggregateConnectionData fills the connection arrays for step.
func AggregateConnectionData(h Header, sched *schedule.Schedule, step int, wells data.Wells) (*ConnectionData, error) {
	active := sched.Wells(step)
	if len(active) > h.NWells {
		return nil, fmt.Errorf("%d wells at step %d, capacity %d: %w", len(active), step, h.NWells, simerr.ErrInvalidArgument)
	}
	n := h.NWells * h.NCWMax
	cd := &ConnectionData{}
	var err error
	if cd.ICon, err = NewWindowedArray[int32](n, NICONZ, 0); err != nil {
		return nil, err
	}
	if cd.SCon, err = NewWindowedArray[float32](n, NSCONZ, 0); err != nil {
		return nil, err
	}
	if cd.XCon, err = NewWindowedArray[float64](n, NXCONZ, 0); err != nil {
		return nil, err
	}

	us := sched.UnitSystem()
	for slot, w := range active {
		if len(w.Connections) > h.NCWMax {
			return nil, fmt.Errorf("well %s has %d connections, capacity %d: %w",
				w.Name, len(w.Connections), h.NCWMax, simerr.ErrInvalidArgument)
		}
		sol, haveSol := wells.Get(w.Name)
		for ci, c := range w.Connections {
			win := connWindow(h, slot, ci)
			ic, _ := cd.ICon.Window(win)
			ic[ICSeqIndex] = int32(ci + 1)
			ic[ICCellI] = int32(c.I + 1)
			ic[ICCellJ] = int32(c.J + 1)
			ic[ICCellK] = int32(c.K + 1)
			ic[ICStatus] = connStatusCode(c.State)
			ic[ICComplNum] = int32(c.ComplNum)
			ic[ICDir] = int32(c.Dir)
			ic[ICSegment] = int32(c.Segment)

			sc, _ := cd.SCon.Window(win)
			sc[SCConnTrans] = float32(us.FromSI(units.Transmissibility, c.CF))
			sc[SCDepth] = float32(us.FromSI(units.Length, c.Depth))
			sc[SCDiameter] = float32(us.FromSI(units.Length, c.Diameter))
			sc[SCEffectiveKH] = float32(us.FromSI(units.EffectiveKH, c.Kh))
			sc[SCSkinFactor] = float32(c.SkinFactor)
			sc[SCSegDistEnd] = float32(us.FromSI(units.Length, c.SegDistEnd))
			sc[SCSegDistStart] = float32(us.FromSI(units.Length, c.SegDistStart))

			if !haveSol || !w.IsOpen() || !c.IsOpen() {
				continue
			}
			xc, _ := cd.XCon.Window(win)
			for _, cs := range sol.Connections {
				if cs.Index != ci {
					continue
				}
				xc[XCOilRate] = us.FromSI(units.LiquidSurfaceRate, cs.Rates.Oil)
				xc[XCWaterRate] = us.FromSI(units.LiquidSurfaceRate, cs.Rates.Water)
				xc[XCGasRate] = us.FromSI(units.GasSurfaceRate, cs.Rates.Gas)
				xc[XCResVRate] = us.FromSI(units.ReservoirRate, cs.Rates.ResV)
				xc[XCPressure] = us.FromSI(units.Pressure, cs.Pressure)
			}
		}
	}
	return cd, nil
}

func connStatusCode(s schedule.ConnState) int32 {
	if s == schedule.ConnOpen {
		return StatusOpenCode
	}
	return StatusShutCode
}

// ConnectionFromRestart rebuilds a connection from its ICON and SCON windows.
// Unknown status or direction codes are rejected.
func ConnectionFromRestart(icon []int32, scon []float32, us units.UnitSystem) (schedule.Connection, error) {
	if len(icon) < NICONZ || len(scon) < NSCONZ {
		return schedule.Connection{}, fmt.Errorf("connection windows of %d/%d items: %w",
			len(icon), len(scon), simerr.ErrInvalidArgument)
	}
	var c schedule.Connection
	switch icon[ICStatus] {
	case StatusOpenCode:
		c.State = schedule.ConnOpen
	case StatusShutCode:
		c.State = schedule.ConnShut
	default:
		return schedule.Connection{}, fmt.Errorf("connection status code %d: %w", icon[ICStatus], simerr.ErrInvalidArgument)
	}
	switch d := schedule.Direction(icon[ICDir]); d {
	case schedule.DirX, schedule.DirY, schedule.DirZ:
		c.Dir = d
	default:
		return schedule.Connection{}, fmt.Errorf("connection direction code %d: %w", icon[ICDir], simerr.ErrInvalidArgument)
	}
	c.I = int(icon[ICCellI]) - 1
	c.J = int(icon[ICCellJ]) - 1
	c.K = int(icon[ICCellK]) - 1
	c.ComplNum = int(icon[ICComplNum])
	c.Segment = int(icon[ICSegment])
	c.CF = us.ToSI(units.Transmissibility, float64(scon[SCConnTrans]))
	c.Depth = us.ToSI(units.Length, float64(scon[SCDepth]))
	c.Diameter = us.ToSI(units.Length, float64(scon[SCDiameter]))
	c.Kh = us.ToSI(units.EffectiveKH, float64(scon[SCEffectiveKH]))
	c.SkinFactor = float64(scon[SCSkinFactor])
	c.SegDistEnd = us.ToSI(units.Length, float64(scon[SCSegDistEnd]))
	c.SegDistStart = us.ToSI(units.Length, float64(scon[SCSegDistStart]))
	return c, nil
}

// WellConnectionsFromRestart rebuilds the connections of well slot w (0-based)
// from full ICON/SCON arrays. nconn comes from IWEL.
func WellConnectionsFromRestart(h Header, icon []int32, scon []float32, w, nconn int, us units.UnitSystem) ([]schedule.Connection, error) {
	if nconn > h.NCWMax {
		return nil, fmt.Errorf("well slot %d claims %d connections, NCWMAX %d: %w", w, nconn, h.NCWMax, simerr.ErrInvalidArgument)
	}
	out := make([]schedule.Connection, 0, nconn)
	for ci := 0; ci < nconn; ci++ {
		win := connWindow(h, w, ci)
		ilo, slo := win*NICONZ, win*NSCONZ
		if ilo+NICONZ > len(icon) || slo+NSCONZ > len(scon) {
			return nil, fmt.Errorf("connection window %d beyond array end: %w", win, simerr.ErrInvalidArgument)
		}
		c, err := ConnectionFromRestart(icon[ilo:ilo+NICONZ], scon[slo:slo+NSCONZ], us)
		if err != nil {
			return nil, fmt.Errorf("well slot %d connection %d: %w", w, ci+1, err)
		}
		out = append(out, c)
	}
	return out, nil
}
