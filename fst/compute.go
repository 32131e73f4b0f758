package fst

// computeProperties derives the full structural property mask of an
// ExpandedFst by walking it directly, for use when a cached mask is
// missing bits a caller asked to have verified (Properties(mask, true)).
// This is the fallback the teacher never needed (Sorted/Hashed never
// answer structural queries like "is this acyclic") but spec.md's Fst
// trait requires of every storage layout.
func computeProperties(f ExpandedFst, mask Properties) Properties {
	n := f.NumStates()
	if n == 0 {
		return Acceptor | IDeterministic | ODeterministic | NoEpsilons |
			NoIEpsilons | NoOEpsilons | ILabelSorted | OLabelSorted |
			Unweighted | Acyclic | InitialAcyclic | TopSorted |
			Accessible | Coaccessible | NotString
	}

	props := Acceptor | IDeterministic | ODeterministic | NoEpsilons |
		NoIEpsilons | NoOEpsilons | ILabelSorted | OLabelSorted | Unweighted

	seenILabel := make(map[StateId]map[Label]bool)
	seenOLabel := make(map[StateId]map[Label]bool)

	for s := StateId(0); int(s) < n; s++ {
		var lastI, lastO Label = -1, -1
		first := true
		for it := f.Arcs(s); !it.Done(); it.Next() {
			a := it.Value()
			if a.ILabel != a.OLabel {
				props &^= Acceptor
				props |= NotAcceptor
			}
			if a.ILabel == Epsilon || a.OLabel == Epsilon {
				props &^= NoEpsilons
				props |= Epsilons
			}
			if a.ILabel == Epsilon {
				props &^= NoIEpsilons
				props |= IEpsilons
			}
			if a.OLabel == Epsilon {
				props &^= NoOEpsilons
				props |= OEpsilons
			}
			if !a.Weight.IsOne() {
				props &^= Unweighted
				props |= Weighted
			}
			if !first {
				if a.ILabel < lastI {
					props &^= ILabelSorted
					props |= NotILabelSorted
				}
				if a.OLabel < lastO {
					props &^= OLabelSorted
					props |= NotOLabelSorted
				}
			}
			first = false
			lastI, lastO = a.ILabel, a.OLabel

			if seenILabel[s] == nil {
				seenILabel[s] = make(map[Label]bool)
			}
			if seenILabel[s][a.ILabel] {
				props &^= IDeterministic
				props |= NonIDeterministic
			}
			seenILabel[s][a.ILabel] = true

			if seenOLabel[s] == nil {
				seenOLabel[s] = make(map[Label]bool)
			}
			if seenOLabel[s][a.OLabel] {
				props &^= ODeterministic
				props |= NonODeterministic
			}
			seenOLabel[s][a.OLabel] = true
		}
	}

	if mask&(Accessible|NotAccessible|Coaccessible|NotCoaccessible|
		Cyclic|Acyclic|TopSorted|NotTopSorted|StringProp|NotString) != 0 {
		props |= computeGraphProperties(f)
	}

	return props
}

// computeGraphProperties walks reachability (forward from Start,
// backward to a final state) and cycle detection via plain DFS, the same
// shape as the teacher's hand-rolled union-find reachability checks in its
// test helpers, generalized from "connected components" to "directed
// accessible/coaccessible".
func computeGraphProperties(f ExpandedFst) Properties {
	n := f.NumStates()
	accessible := make([]bool, n)
	var visit func(s StateId)
	visit = func(s StateId) {
		if int(s) < 0 || int(s) >= n || accessible[s] {
			return
		}
		accessible[s] = true
		for it := f.Arcs(s); !it.Done(); it.Next() {
			visit(it.Value().NextState)
		}
	}
	if f.Start() != NoStateId {
		visit(f.Start())
	}

	rev := make([][]StateId, n)
	for s := StateId(0); int(s) < n; s++ {
		for it := f.Arcs(s); !it.Done(); it.Next() {
			next := it.Value().NextState
			if int(next) >= 0 && int(next) < n {
				rev[next] = append(rev[next], s)
			}
		}
	}
	coaccessible := make([]bool, n)
	var visitRev func(s StateId)
	visitRev = func(s StateId) {
		if int(s) < 0 || int(s) >= n || coaccessible[s] {
			return
		}
		coaccessible[s] = true
		for _, p := range rev[s] {
			visitRev(p)
		}
	}
	for s := StateId(0); int(s) < n; s++ {
		if !f.Final(s).IsZero() {
			visitRev(s)
		}
	}

	allAccessible, allCoaccessible := true, true
	for s := StateId(0); int(s) < n; s++ {
		if !accessible[s] {
			allAccessible = false
		}
		if !coaccessible[s] {
			allCoaccessible = false
		}
	}

	cyclic := hasCycle(f, n)

	props := Properties(0)
	if allAccessible {
		props |= Accessible
	} else {
		props |= NotAccessible
	}
	if allCoaccessible {
		props |= Coaccessible
	} else {
		props |= NotCoaccessible
	}
	if cyclic {
		props |= Cyclic
		props |= NotTopSorted
	} else {
		props |= Acyclic
		props |= TopSorted
	}
	if n <= 1 && !cyclic {
		props |= StringProp
	} else {
		props |= NotString
	}
	return props
}

func hasCycle(f ExpandedFst, n int) bool {
	const white, gray, black = 0, 1, 2
	color := make([]int, n)
	var dfs func(s StateId) bool
	dfs = func(s StateId) bool {
		color[s] = gray
		for it := f.Arcs(s); !it.Done(); it.Next() {
			next := it.Value().NextState
			if int(next) < 0 || int(next) >= n {
				continue
			}
			switch color[next] {
			case gray:
				return true
			case white:
				if dfs(next) {
					return true
				}
			}
		}
		color[s] = black
		return false
	}
	for s := StateId(0); s < StateId(n); s++ {
		if color[s] == white {
			if dfs(s) {
				return true
			}
		}
	}
	return false
}
