package dcmst

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewDcmstCommand builds the degree-constrained minimum spanning tree
// benchmark sub-command.
func NewDcmstCommand() *cobra.Command {
	var (
		searchMode string
		timeLimit  time.Duration
		boundsPath string
		outPath    string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "dcmst <instance>",
		Short: "Solves a degree-constrained minimum spanning tree instance",
		Long: `Solves a degree-constrained minimum spanning tree instance. The file
starts with the node count, followed by one "<node> <maxDegree>" line per
node and one "<from> <to> <cost>" line per arc (1-based node ids):

3
1 1
2 2
3 1
1 2 5
2 3 7

A result line "name;solutions;fails;nodes;timeMs;bestCost;searchMode;" is
appended to the output file, or printed when no output file is given.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("file (%s) not found", args[0])
			}
			switch searchMode {
			case SearchFirst, SearchBotUp, SearchDicho:
				return nil
			}
			return fmt.Errorf("invalid search mode %q, want %s, %s or %s",
				searchMode, SearchFirst, SearchBotUp, SearchDicho)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
			return run(cmd.Context(), args[0], searchMode, timeLimit, boundsPath, outPath, verbose)
		},
	}

	cmd.Flags().StringVar(&searchMode, "search", SearchBotUp, "search mode: first, botup or dicho")
	cmd.Flags().DurationVar(&timeLimit, "time-limit", 100*time.Second, "wall-clock search limit")
	cmd.Flags().StringVar(&boundsPath, "bounds", "", "bound table with `<n>;<upperBound>` rows")
	cmd.Flags().StringVar(&outPath, "out", "", "file to append the result line to (default stdout)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log search progress")
	return cmd
}

func run(ctx context.Context, path, searchMode string, timeLimit time.Duration, boundsPath, outPath string, verbose bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening instance file (%s): %w", path, err)
	}
	defer f.Close()

	inst, err := ParseInstance(instanceName(path), f)
	if err != nil {
		return fmt.Errorf("error parsing instance file (%s): %w", path, err)
	}

	cfg := Config{
		SearchMode: searchMode,
		TimeLimit:  timeLimit,
		Verbose:    verbose,
	}
	if boundsPath != "" {
		bf, err := os.Open(boundsPath)
		if err != nil {
			return fmt.Errorf("error opening bounds file (%s): %w", boundsPath, err)
		}
		bounds, perr := ParseBounds(bf)
		bf.Close()
		if perr != nil {
			return fmt.Errorf("error parsing bounds file (%s): %w", boundsPath, perr)
		}
		if ub, ok := bounds[inst.N]; ok {
			cfg.UpperBound = ub
			log.Debugf("using upper bound %d for n=%d", ub, inst.N)
		}
	}

	outcome, err := Solve(ctx, inst, cfg)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outPath != "" {
		out, err = os.OpenFile(outPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("error opening output file (%s): %w", outPath, err)
		}
		defer out.Close()
	}
	return Report(out, outcome)
}

func instanceName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
