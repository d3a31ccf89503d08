package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"fraction-tug-service/internal/app"
	"fraction-tug-service/internal/domain"
	"github.com/spf13/cobra"
)

// NewProblemsCmd prints freshly generated problems, handy for worksheets.
func NewProblemsCmd() *cobra.Command {
	var (
		count  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "problems",
		Short: "Print generated fraction problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("count must be positive: %d", count)
			}
			return printProblems(cmd.OutOrStdout(), app.NewGenerator(), count, asJSON)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of problems to print")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print problems as JSON lines")
	return cmd
}

func printProblems(w io.Writer, problems app.ProblemSource, count int, asJSON bool) error {
	enc := json.NewEncoder(w)
	for i := 0; i < count; i++ {
		p := problems.Generate()
		if asJSON {
			if err := enc.Encode(p); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintln(w, formatProblem(i+1, p)); err != nil {
			return err
		}
	}
	return nil
}

func formatProblem(n int, p domain.Problem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%2d. %s %s %s = ?   ", n, formatFraction(p.Operands[0]), p.Operator, formatFraction(p.Operands[1]))
	for i, opt := range p.Options {
		fmt.Fprintf(&b, " %c) %s", 'a'+i, formatFraction(opt))
	}
	return b.String()
}

func formatFraction(f domain.Fraction) string {
	return fmt.Sprintf("%d/%d", f.Numerator, f.Denominator)
}
