package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"trigator.klederson.com/internal/trilat"
)

// Result is a solved survey, or the reason it could not be solved.
type Result struct {
	Survey   *Survey
	Exponent float64
	Anchors  [3]trilat.AnchorPoint
	Solution trilat.Solution
	Err      error
}

// Solve runs the solver over a survey with the given exponent.
func Solve(s *Survey, n float64) Result {
	r := Result{Survey: s, Exponent: n, Anchors: s.AnchorPoints()}
	r.Solution, r.Err = trilat.SolveDetailed(r.Anchors, n)
	return r
}

// Print writes the anchor table followed by the estimate or the error.
func Print(w io.Writer, r Result) {
	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	if r.Survey != nil && r.Survey.Name != "" {
		fmt.Fprintf(w, "%s\n", color.New(color.Bold).Sprint(r.Survey.Name))
	}

	tbl := table.New("ANCHOR", "X", "Y", "TX dBm", "RX dBm", "DISTANCE", "RESIDUAL").
		WithWriter(w).
		WithHeaderFormatter(headerFmt).
		WithFirstColumnFormatter(columnFmt)

	for i, a := range r.Anchors {
		tx, rx := "-", "-"
		if a.Measurement != nil {
			if a.Measurement.TxPowerDBm != nil {
				tx = fmt.Sprintf("%.1f", *a.Measurement.TxPowerDBm)
			}
			if a.Measurement.RxPowerDBm != nil {
				rx = fmt.Sprintf("%.1f", *a.Measurement.RxPowerDBm)
			}
		}
		dist, resid := "-", "-"
		if r.Err == nil {
			dist = fmt.Sprintf("%.2f", r.Solution.Distances[i])
			resid = fmt.Sprintf("%+.2f", r.Solution.Residuals[i])
		} else if a.Measured() {
			if d, err := trilat.Distance(*a.Measurement, r.Exponent); err == nil {
				dist = fmt.Sprintf("%.2f", d)
			}
		}
		tbl.AddRow(i+1, fmt.Sprintf("%.2f", a.X), fmt.Sprintf("%.2f", a.Y), tx, rx, dist, resid)
	}
	tbl.Print()

	fmt.Fprintf(w, "\npath-loss exponent: %.2f\n", r.Exponent)
	if r.Err != nil {
		fmt.Fprintf(w, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("no estimate:"), r.Err)
		return
	}
	fmt.Fprintf(w, "%s %s\n", color.New(color.FgGreen, color.Bold).Sprint("estimated location:"), r.Solution.Location)
}
