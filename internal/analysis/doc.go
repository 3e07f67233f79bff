// Package analysis characterises the pitch response of a simulated run.
//
// [Analyze] pads a trace to a power of two, takes its power spectrum with
// [FFT] and reports the dominant oscillation frequency:
//
//	sp, err := analysis.Analyze(tr.Series("pitch"), airframe.TickInterval)
//	if err == nil && sp.Frequency > 0 {
//	    fmt.Printf("period: %.3f s\n", sp.Period())
//	}
package analysis
