// Command fstcompile reads an FST in AT&T text format and writes it out
// in the binary const layout, mirroring the teacher's cmd/compile (which
// turns an ARPA text model into a binary one) for this library's own
// text-to-binary compilation step.
package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/kho/easy"

	"github.com/mjansche/wfst-go/fst"
	"github.com/mjansche/wfst-go/symtab"
	"github.com/mjansche/wfst-go/weight"
)

func main() {
	var args struct {
		Out string `name:"out" usage:"path to write the compiled binary FST"`
	}
	arcType := flag.String("arc_type", "tropical", "arc weight semiring: tropical, log, or boolean")
	isymbols := flag.String("isymbols", "", "path to input symbol table text file")
	osymbols := flag.String("osymbols", "", "path to output symbol table text file")
	easy.ParseFlagsAndArgs(&args)

	sr, err := semiringByName(*arcType)
	if err != nil {
		glog.Fatal(err)
	}

	f, err := fst.ReadATT(os.Stdin, sr)
	if err != nil {
		glog.Fatal("reading AT&T text FST: ", err)
	}

	if *isymbols != "" {
		t, err := readSymbols("isyms", *isymbols)
		if err != nil {
			glog.Fatal(err)
		}
		f.SetInputSymbols(t)
	}
	if *osymbols != "" {
		t, err := readSymbols("osyms", *osymbols)
		if err != nil {
			glog.Fatal(err)
		}
		f.SetOutputSymbols(t)
	}

	if args.Out == "" {
		glog.Fatal("-out is required")
	}
	cf := fst.NewConstFst(f)
	if err := fst.WriteConstFst(cf, args.Out); err != nil {
		glog.Fatal("writing compiled FST: ", err)
	}
	numArcs := 0
	for s := 0; s < cf.NumStates(); s++ {
		numArcs += cf.NumArcs(fst.StateId(s))
	}
	glog.Infof("compiled %d states, %d arcs -> %s", cf.NumStates(), numArcs, args.Out)
}

func readSymbols(name, path string) (*symtab.Table, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return symtab.ReadText(name, r)
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
		return nil, errUnknownArcType(name)
	}
}

type errUnknownArcType string

func (e errUnknownArcType) Error() string { return "fstcompile: unknown -arc_type " + string(e) }
