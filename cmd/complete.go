package cmd

import (
	"flag"
	"sort"

	"github.com/etnz/irtax/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Complete runs the shell completion when invoked by the shell, it is a
// no-op otherwise.
//
// Install it with COMP_INSTALL=1 irtax.
func Complete(name string) {
	completion().Complete(name)
}

// completion builds the completion tree from the subcommands flags.
func completion() *complete.Command {
	root := &complete.Command{
		Sub: map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{
			"ledger-file": predict.Files("*.jsonl"),
			"config":      predict.Files("*.yaml"),
		},
	}
	for _, c := range Commands {
		fs := flag.NewFlagSet(c.Command.Name(), flag.ContinueOnError)
		c.Command.SetFlags(fs)
		sub := &complete.Command{Flags: map[string]complete.Predictor{}}
		fs.VisitAll(func(f *flag.Flag) {
			sub.Flags[f.Name] = predictFlag(f)
		})
		switch c.Command.Name() {
		case "topic":
			topics, _ := docs.GetAllTopics()
			sub.Args = predict.Set(topics)
		case "classify":
			sub.Args = predict.Something
		default:
			sub.Args = predict.Nothing
		}
		root.Sub[c.Command.Name()] = sub
	}
	root.Sub["help"] = &complete.Command{Args: predict.Set(subNames(root))}
	return root
}

func predictFlag(f *flag.Flag) complete.Predictor {
	switch {
	case f.Name == "values":
		return predict.Files("*.jsonl")
	case isBoolFlag(f):
		return predict.Nothing
	default:
		return predict.Something
	}
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

func subNames(c *complete.Command) []string {
	names := make([]string, 0, len(c.Sub))
	for n := range c.Sub {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
