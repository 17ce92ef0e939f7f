package solver

import (
	"container/heap"
	"context"
	"math"
	"time"

	"github.com/beanfleet/coffeeplan/internal/domain/planning/milp"
)

// bbNode is one open subproblem. bound is the LP objective of its parent, a
// valid lower bound on anything in the subtree.
type bbNode struct {
	id    int
	bound float64
	fixed map[milp.Var]float64
}

// nodeQueue is a best-bound priority queue; ties break on node id so the
// search order is reproducible across runs.
type nodeQueue []*bbNode

func (q nodeQueue) Len() int { return len(q) }
func (q nodeQueue) Less(i, j int) bool {
	if q[i].bound != q[j].bound {
		return q[i].bound < q[j].bound
	}
	return q[i].id < q[j].id
}
func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(*bbNode)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

type incumbent struct {
	objective float64
	primals   []float64
}

func branchAndBound(ctx context.Context, m *milp.Model, opts Options) Outcome {
	relax := newRelaxation(m)
	deadline := time.Now().Add(opts.TimeLimit)

	queue := &nodeQueue{}
	heap.Init(queue)
	heap.Push(queue, &bbNode{id: 0, bound: math.Inf(-1), fixed: map[milp.Var]float64{}})
	nextID := 1

	var best *incumbent
	cancelled := false
	outOfTime := false

	for queue.Len() > 0 {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		if time.Now().After(deadline) {
			outOfTime = true
			break
		}

		node := heap.Pop(queue).(*bbNode)
		if best != nil && node.bound >= best.objective-1e-9 {
			continue
		}

		res, err := relax.solve(node.fixed)
		if err != nil {
			return Outcome{Status: StatusError, Reason: err.Error()}
		}
		if !res.feasible {
			continue
		}
		if best != nil && res.objective >= best.objective-1e-9 {
			continue
		}

		branchVar, fractional := mostFractionalBinary(relax.binaries, node.fixed, res.primals, opts.IntTol)
		if !fractional {
			if best == nil || res.objective < best.objective {
				best = &incumbent{objective: res.objective, primals: res.primals}
			}
			continue
		}

		for _, value := range []float64{0, 1} {
			child := &bbNode{id: nextID, bound: res.objective, fixed: cloneFixed(node.fixed)}
			child.fixed[branchVar] = value
			nextID++
			heap.Push(queue, child)
		}

		if best != nil && relativeGap(best.objective, lowestBound(queue)) <= opts.MIPGap {
			break
		}
	}

	// Cancellation discards any incumbent: the caller asked the search to stop,
	// so reporting Optimal would overstate what was proven.
	if cancelled {
		return Outcome{Status: StatusTimedOut}
	}

	if best == nil {
		if outOfTime {
			return Outcome{Status: StatusTimedOut}
		}
		return Outcome{Status: StatusInfeasible}
	}

	if gap := m.MaxIntegralityGap(best.primals); gap > opts.IntTol {
		return Outcome{Status: StatusError, Reason: "non-integral binary"}
	}
	primals := roundBinaries(m, best.primals)

	finalGap := 0.0
	if queue.Len() > 0 {
		finalGap = relativeGap(best.objective, lowestBound(queue))
	}

	return Outcome{
		Status:      StatusOptimal,
		Objective:   m.ObjectiveValue(primals),
		Primals:     primals,
		Gap:         finalGap,
		GapExceeded: outOfTime && finalGap > opts.MIPGap,
	}
}

// mostFractionalBinary picks the unfixed binary farthest from integrality,
// lowest index on ties. Returns false when every binary is integral within tol.
func mostFractionalBinary(binaries []milp.Var, fixed map[milp.Var]float64, primals []float64, tol float64) (milp.Var, bool) {
	bestVar := milp.Var(-1)
	bestFrac := tol
	for _, v := range binaries {
		if _, isFixed := fixed[v]; isFixed {
			continue
		}
		value := primals[v]
		frac := math.Min(value-math.Floor(value), math.Ceil(value)-value)
		if frac > bestFrac {
			bestFrac = frac
			bestVar = v
		}
	}
	return bestVar, bestVar >= 0
}

func cloneFixed(fixed map[milp.Var]float64) map[milp.Var]float64 {
	out := make(map[milp.Var]float64, len(fixed)+1)
	for k, v := range fixed {
		out[k] = v
	}
	return out
}

func lowestBound(queue *nodeQueue) float64 {
	if queue.Len() == 0 {
		return math.Inf(1)
	}
	return (*queue)[0].bound
}

func relativeGap(incumbentObj, bound float64) float64 {
	if math.IsInf(bound, -1) {
		return math.Inf(1)
	}
	if bound >= incumbentObj {
		return 0
	}
	return (incumbentObj - bound) / math.Max(1, math.Abs(incumbentObj))
}

func roundBinaries(m *milp.Model, primals []float64) []float64 {
	out := make([]float64, len(primals))
	copy(out, primals)
	for _, v := range m.Binaries() {
		out[v] = math.Round(out[v])
	}
	return out
}
