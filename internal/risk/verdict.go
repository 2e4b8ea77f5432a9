package risk

// Verdict is the scan outcome used for exit-code mapping.
type Verdict string

const (
	VerdictPass Verdict = "pass"
	VerdictWarn Verdict = "warn"
	VerdictFail Verdict = "fail"
)

// VerdictFor maps a result to its verdict: any critical finding fails the
// scan, any high finding short of that warns, everything else passes.
// Medium and below never change the verdict.
func VerdictFor(res Result) Verdict {
	if res.BySeverity[SeverityCritical] > 0 {
		return VerdictFail
	}
	if res.BySeverity[SeverityHigh] > 0 {
		return VerdictWarn
	}
	return VerdictPass
}

// Passes reports whether the result is free of critical and high findings.
func Passes(res Result) bool {
	return res.BySeverity[SeverityCritical] == 0 && res.BySeverity[SeverityHigh] == 0
}

// ExitCode maps a verdict to the process exit code.
func (v Verdict) ExitCode() int {
	switch v {
	case VerdictFail:
		return 2
	case VerdictWarn:
		return 1
	default:
		return 0
	}
}
