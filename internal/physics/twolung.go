package physics

import (
	"github.com/san-kum/ventsim/internal/dynamo"
)

const (
	RightLung = "right"
	LeftLung  = "left"
)

// TwoLung is the coupled parallel model. Both compartments see the same
// driving pressure u[0]; the state is [V_right, V_left].
type TwoLung struct {
	Right Compartment
	Left  Compartment
}

// NewTwoLung validates both compartments for coupled integration.
func NewTwoLung(right, left Compartment) (*TwoLung, error) {
	if err := right.ValidateCoupled(); err != nil {
		return nil, err
	}
	if err := left.ValidateCoupled(); err != nil {
		return nil, err
	}
	return &TwoLung{Right: right, Left: left}, nil
}

func (m *TwoLung) StateDim() int   { return 2 }
func (m *TwoLung) ControlDim() int { return 1 }

func (m *TwoLung) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	p := u[0]
	dRight, _ := m.Right.Flows(p, x[0])
	dLeft, _ := m.Left.Flows(p, x[1])
	return dynamo.State{dRight, dLeft}
}

func (m *TwoLung) InitialState(ic InitialCondition) dynamo.State {
	return dynamo.State{m.Right.Initial(ic), m.Left.Initial(ic)}
}

// Traces rebuilds per-compartment flows and pressures from an integrated
// trajectory and the driving pressure that produced it.
func (m *TwoLung) Traces(traj *dynamo.Trajectory, pressure dynamo.Series, dt float64) (right, left Trace) {
	return coupledTrace(m.Right, traj.Component(0), pressure, dt),
		coupledTrace(m.Left, traj.Component(1), pressure, dt)
}

func coupledTrace(c Compartment, volume, pressure dynamo.Series, dt float64) Trace {
	tr := newTrace(len(volume))
	copy(tr.Volume, volume)

	for i := range volume {
		prev := volume[0]
		if i > 0 {
			prev = volume[i-1]
		}
		net, leak := c.Flows(pressure[i], prev)

		tr.Flow[i] = net
		tr.LeakFlow[i] = leak
		tr.Elastic[i] = c.E * (volume[i] - c.FRC)
		tr.Resistive[i] = c.R * net
		if i > 0 {
			tr.Leaked += leak * dt
		}
	}

	return tr
}
