package algo

import "github.com/mjansche/wfst-go/fst"

// Connect trims f in place to its accessible-and-coaccessible core,
// deleting every state not reachable from the start state or from which
// no final state is reachable, per spec.md §4.4's connection operation.
func Connect(f fst.MutableFst) {
	n := f.NumStates()
	accessible := reachableForward(f, n)
	coaccessible := reachableBackward(f, n)

	var dead []fst.StateId
	for s := fst.StateId(0); int(s) < n; s++ {
		if !accessible[s] || !coaccessible[s] {
			dead = append(dead, s)
		}
	}
	if len(dead) > 0 {
		f.DeleteStates(dead)
	}
}

func reachableForward(f fst.Fst, n int) []bool {
	seen := make([]bool, n)
	var visit func(s fst.StateId)
	visit = func(s fst.StateId) {
		if int(s) < 0 || int(s) >= n || seen[s] {
			return
		}
		seen[s] = true
		for it := f.Arcs(s); !it.Done(); it.Next() {
			visit(it.Value().NextState)
		}
	}
	if f.Start() != fst.NoStateId {
		visit(f.Start())
	}
	return seen
}

func reachableBackward(f fst.Fst, n int) []bool {
	rev := make([][]fst.StateId, n)
	for s := fst.StateId(0); int(s) < n; s++ {
		for it := f.Arcs(s); !it.Done(); it.Next() {
			next := it.Value().NextState
			if int(next) >= 0 && int(next) < n {
				rev[next] = append(rev[next], s)
			}
		}
	}
	seen := make([]bool, n)
	var visit func(s fst.StateId)
	visit = func(s fst.StateId) {
		if int(s) < 0 || int(s) >= n || seen[s] {
			return
		}
		seen[s] = true
		for _, p := range rev[s] {
			visit(p)
		}
	}
	for s := fst.StateId(0); int(s) < n; s++ {
		if !f.Final(s).IsZero() {
			visit(s)
		}
	}
	return seen
}
