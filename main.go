package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dianpeng/relpipe/dt"
	"github.com/dianpeng/relpipe/rel"
	"github.com/dianpeng/relpipe/rlang"
	"github.com/dianpeng/relpipe/stream"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// oops reports a failure and returns the exit code for it.
func oops(stage string, err error) int {
	color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "ERROR [%s]]] ", stage)
	fmt.Fprintf(os.Stderr, "%s\n", err)
	return -1
}

type joinRunner interface {
	Run(rel.RecordInputStream, rel.RecordOutputStream, []rlang.Token) (bool, error)
}

type options struct {
	input  string
	output string
	sep    string
	limit  int
	stats  bool
}

func (self *options) streamConfig() (*stream.Config, error) {
	config := &stream.Config{}
	switch self.sep {
	case "", "\\t", "tab":
		config.Separator = '\t'
	default:
		if len(self.sep) != 1 {
			return nil, fmt.Errorf("separator must be a single byte, got %q", self.sep)
		}
		config.Separator = self.sep[0]
	}
	return config, nil
}

type sink interface {
	rel.RecordOutputStream
	SetLimit(int)
	Written() int
	Err() error
}

// runJoin returns the process exit code. Files it opens are closed before
// it returns, whatever the outcome.
func runJoin(
	opt *options,
	args []string,
	newJoin func(*dt.Registry, *stream.Config) (joinRunner, *rel.Joiner),
) int {
	config, err := opt.streamConfig()
	if err != nil {
		return oops("config", err)
	}

	tokens, err := rlang.Lex(strings.Join(args, " "))
	if err != nil {
		return oops("argument", err)
	}

	var input rel.RecordInputStream
	if opt.input == "" || opt.input == "-" {
		input = stream.NewReader(os.Stdin, config)
	} else {
		f, err := stream.OpenRO(opt.input, config)
		if err != nil {
			return oops("input", err)
		}
		defer f.Close()
		input = f
	}

	var output sink
	var finish func() error
	if opt.output == "" || opt.output == "-" {
		w := stream.NewWriter(os.Stdout, config)
		output, finish = w, w.Flush
	} else {
		f, err := stream.Create(opt.output, config)
		if err != nil {
			return oops("output", err)
		}
		output, finish = f, f.Close
	}
	if opt.limit > 0 {
		// the headings take one record
		output.SetLimit(opt.limit + 1)
	}

	j, joiner := newJoin(dt.NewRegistry(), config)
	complete, err := j.Run(input, output, tokens)
	ferr := finish()
	if err != nil {
		return oops("join", err)
	}
	if ferr != nil {
		return oops("output", ferr)
	}

	if opt.stats {
		printStats(joiner.Stats, output)
	}
	if !complete {
		color.New(color.FgYellow).Fprintf(os.Stderr, "incomplete: %s\n", output.Err())
		return 2
	}
	return 0
}

func printStats(s *rel.Stats, output sink) {
	key := color.New(color.FgCyan)
	line := func(k string, v interface{}) {
		key.Fprintf(os.Stderr, "%-22s", k)
		fmt.Fprintf(os.Stderr, "%v\n", v)
	}
	line("build rows", s.BuildRows)
	line("probe rows", s.ProbeRows)
	line("emitted rows", s.EmittedRows)
	line("unmatched probe rows", s.UnmatchedProbeRows)
	line("matched build rows", s.DistinctBuildMatched())
	line("records written", output.Written())
}

func addFlags(cmd *cobra.Command, opt *options) {
	cmd.Flags().StringVar(&opt.input, "input", "", "input relation, default read from STDIN")
	cmd.Flags().StringVar(&opt.output, "output", "", "specify path to save output, the extension picks compression (.gz .zst .sz .lz4), default write to STDOUT")
	cmd.Flags().StringVar(&opt.sep, "sep", "tab", "field separator")
	cmd.Flags().IntVar(&opt.limit, "limit", 0, "maximum number of records to output, 0 for no limit")
	cmd.Flags().BoolVar(&opt.stats, "stats", false, "print join statistics to STDERR")
}

func main() {
	root := &cobra.Command{
		Use:   "relpipe",
		Short: "Relational operators over headered record streams",
	}

	leftOpt := &options{}
	cmd := &cobra.Command{
		Use:   "join-left expr",
		Short: "Left join the input with the relation named by expr",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(runJoin(leftOpt, args, func(r *dt.Registry, c *stream.Config) (joinRunner, *rel.Joiner) {
				j := rel.NewJoinLeft(r, c)
				return j, &j.Joiner
			}))
		},
	}
	addFlags(cmd, leftOpt)
	root.AddCommand(cmd)

	naturalOpt := &options{}
	cmd = &cobra.Command{
		Use:   "join-natural expr",
		Short: "Inner join the input with the relation named by expr",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(runJoin(naturalOpt, args, func(r *dt.Registry, c *stream.Config) (joinRunner, *rel.Joiner) {
				j := rel.NewJoinNatural(r, c)
				return j, &j.Joiner
			}))
		},
	}
	addFlags(cmd, naturalOpt)
	root.AddCommand(cmd)

	if err := root.Execute(); err != nil {
		os.Exit(-1)
	}
	os.Exit(0)
}
