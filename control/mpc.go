package control

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/signalsfoundry/plant-ots/model"
)

// MPCController plans reflux and reboil moves over a short horizon against a
// linearised column model (purity and column dP respond linearly to the two
// moves, state otherwise holds). The quadratic program is solved by projected
// gradient descent with a fixed iteration budget; only the first planned move
// is issued, and a degenerate solve falls back to a proportional law so the
// controller always returns something bounded.
type MPCController struct {
	cfg *model.PlantConfig

	horizon int
	iters   int
	step    float64

	b   *mat.Dense // state response to one move
	q   *mat.DiagDense
	s   *mat.DiagDense
	ref *mat.VecDense
}

// NewMPCController builds the planner with the design-point linearisation.
func NewMPCController(cfg *model.PlantConfig) (*MPCController, error) {
	if cfg.Type != model.PlantColumn {
		return nil, fmt.Errorf("mpc controller supports %q plants only, got %q",
			model.PlantColumn, cfg.Type)
	}
	return &MPCController{
		cfg:     cfg,
		horizon: 15,
		iters:   40,
		step:    5e-4,
		// Rows: [purity, column dP]; columns: [reflux move, reboil move].
		b:   mat.NewDense(2, 2, []float64{0.005, 0.004, 0.003, -0.001}),
		q:   mat.NewDiagDense(2, []float64{2000, 50}),
		s:   mat.NewDiagDense(2, []float64{1, 1}),
		ref: mat.NewVecDense(2, []float64{0.9990, 0.10}),
	}, nil
}

func (c *MPCController) Name() string { return "mpc" }

// Suggest plans the horizon from the committed state and issues the first
// move. The transfer setpoint is held at the current flow.
func (c *MPCController) Suggest(_ context.Context, state model.TagMap) (model.TagMap, error) {
	x0 := mat.NewVecDense(2, []float64{
		state[model.TagPurity],
		state[model.TagColumnDP],
	})

	refluxAct, _ := c.cfg.Actuator(model.TagRefluxSP)
	reboilAct, _ := c.cfg.Actuator(model.TagReboilSP)
	caps := [2]float64{refluxAct.MoveCap, reboilAct.MoveCap}

	first, ok := c.solve(x0, caps)
	if !ok {
		first = c.fallback(state)
	}

	transferAct, _ := c.cfg.Actuator(model.TagTransferSP)
	return model.TagMap{
		model.TagRefluxSP: clip(state[model.TagRefluxFlow]+first[0],
			refluxAct.Min, refluxAct.Max),
		model.TagReboilSP: clip(state[model.TagReboilDuty]+first[1],
			reboilAct.Min, reboilAct.Max),
		model.TagTransferSP: clip(state[model.TagTransferFlow],
			transferAct.Min, transferAct.Max),
	}, nil
}

// solve runs projected gradient descent over the move sequence and returns
// the first move. ok is false when the iterate left the numeric domain.
func (c *MPCController) solve(x0 *mat.VecDense, caps [2]float64) ([2]float64, bool) {
	h := c.horizon
	u := make([]*mat.VecDense, h)
	for k := range u {
		u[k] = mat.NewVecDense(2, nil)
	}

	x := make([]*mat.VecDense, h+1)
	grad := mat.NewVecDense(2, nil)
	tmp := mat.NewVecDense(2, nil)
	errv := mat.NewVecDense(2, nil)

	for it := 0; it < c.iters; it++ {
		// Roll the linear model forward under the current plan.
		x[0] = x0
		for k := 0; k < h; k++ {
			next := mat.NewVecDense(2, nil)
			next.MulVec(c.b, u[k])
			next.AddVec(next, x[k])
			x[k+1] = next
		}

		// dJ/du_j = 2 B' Q sum_{k>j}(x_k - ref) + 2 S u_j, then project
		// each move into its cap box.
		for j := 0; j < h; j++ {
			errv.Zero()
			for k := j + 1; k <= h; k++ {
				tmp.SubVec(x[k], c.ref)
				errv.AddVec(errv, tmp)
			}
			tmp.MulVec(c.q, errv)
			grad.MulVec(c.b.T(), tmp)
			tmp.MulVec(c.s, u[j])
			grad.AddVec(grad, tmp)

			for i := 0; i < 2; i++ {
				v := u[j].AtVec(i) - c.step*2*grad.AtVec(i)
				u[j].SetVec(i, clip(v, -caps[i], caps[i]))
			}
		}
	}

	first := [2]float64{u[0].AtVec(0), u[0].AtVec(1)}
	if math.IsNaN(first[0]) || math.IsNaN(first[1]) ||
		math.IsInf(first[0], 0) || math.IsInf(first[1], 0) {
		return [2]float64{}, false
	}
	return first, true
}

// fallback is the proportional law used when the solve degenerates.
func (c *MPCController) fallback(state model.TagMap) [2]float64 {
	purityErr := c.ref.AtVec(0) - state[model.TagPurity]
	return [2]float64{3.0 * purityErr * 100, 1.5 * purityErr * 100}
}
