// Command fstrun loads a compiled FST and scores a corpus of label
// sequences against it, one line per sequence, reporting the total path
// weight and out-of-vocabulary count. It mirrors the teacher's
// cmd/score in shape (load once, stream a corpus, report aggregate
// timing via glog/easy) applied to walking an FST instead of an n-gram
// model.
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/kho/easy"
	"github.com/kho/word"

	"github.com/mjansche/wfst-go/fst"
	"github.com/mjansche/wfst-go/symtab"
	"github.com/mjansche/wfst-go/weight"
)

func main() {
	var args struct {
		Model string `name:"model" usage:"compiled binary FST"`
	}
	arcType := flag.String("arc_type", "tropical", "arc weight semiring of the compiled FST")
	isymbols := flag.String("isymbols", "", "path to input symbol table text file used to resolve corpus tokens")
	easy.ParseFlagsAndArgs(&args)

	sr, err := semiringByName(*arcType)
	if err != nil {
		glog.Fatal(err)
	}

	cf, err := fst.ReadConstFst(args.Model, sr)
	if err != nil {
		glog.Fatal("loading model: ", err)
	}
	defer cf.Close()

	var syms *symtab.Table
	if *isymbols != "" {
		r, err := os.Open(*isymbols)
		if err != nil {
			glog.Fatal(err)
		}
		syms, err = symtab.ReadText("isyms", r)
		r.Close()
		if err != nil {
			glog.Fatal(err)
		}
	}

	var corpus [][]word.Id
	var numOOVs int
	glog.Info("loading corpus took ", easy.Timed(func() {
		corpus, numOOVs = loadCorpus(os.Stdin, syms)
	}))

	var numWords, numSents, numRejected int
	var total weight.Weight = sr.One()
	elapsed := easy.Timed(func() {
		numSents, numWords, numRejected, total = scoreCorpus(cf, corpus)
	})
	glog.Infof("scoring took %v; %g seq/s", elapsed, float64(numSents)*float64(time.Second)/float64(elapsed))

	fmt.Printf("%d sequences, %d labels, %d OOV tokens, %d rejected (no matching path)\n", numSents, numWords, numOOVs, numRejected)
	fmt.Printf("total weight: %s\n", total)
}

func loadCorpus(r io.Reader, syms *symtab.Table) (sents [][]word.Id, numOOVs int) {
	in := bufio.NewScanner(r)
	for in.Scan() {
		var sent []word.Id
		for _, tok := range bytes.Fields(in.Bytes()) {
			if syms == nil {
				continue
			}
			label, ok := syms.FindLabel(string(tok))
			if !ok {
				numOOVs++
				continue
			}
			sent = append(sent, word.Id(label))
		}
		sents = append(sents, sent)
	}
	if err := in.Err(); err != nil {
		glog.Fatal("reading corpus: ", err)
	}
	return
}

// scoreCorpus walks cf deterministically from its start state for each
// sequence, taking the first arc matching each label; a sequence that
// hits a state with no matching arc, or ends on a non-final state, is
// counted as rejected rather than contributing to total.
func scoreCorpus(cf *fst.ConstFst, corpus [][]word.Id) (numSents, numWords, numRejected int, total weight.Weight) {
	sr := cf.Semiring()
	total = sr.One()
	for _, sent := range corpus {
		numSents++
		s := cf.Start()
		w := sr.One()
		ok := s != fst.NoStateId
		for _, id := range sent {
			numWords++
			if !ok {
				break
			}
			next, arcWeight, found := matchArc(cf, s, fst.Label(id))
			if !found {
				ok = false
				break
			}
			s = next
			w = w.Times(arcWeight)
		}
		if !ok {
			numRejected++
			continue
		}
		fw := cf.Final(s)
		if fw.IsZero() {
			numRejected++
			continue
		}
		total = total.Plus(w.Times(fw))
	}
	return
}

func matchArc(f fst.Fst, s fst.StateId, label fst.Label) (next fst.StateId, w weight.Weight, found bool) {
	for it := f.Arcs(s); !it.Done(); it.Next() {
		a := it.Value()
		if a.ILabel == label {
			return a.NextState, a.Weight, true
		}
	}
	return fst.NoStateId, nil, false
}

func semiringByName(name string) (weight.Semiring, error) {
	switch name {
	case "tropical":
		return weight.TropicalSemiring{}, nil
	case "log":
		return weight.LogSemiring{}, nil
	case "boolean":
		return weight.BooleanSemiring{}, nil
	default:
		return nil, fmt.Errorf("fstrun: unknown -arc_type %q", name)
	}
}
