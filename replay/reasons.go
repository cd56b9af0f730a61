package replay

// Reason is a stable, machine-readable outcome code for a replay
// verification run. The taxonomy is closed: codes are never renamed or
// removed, only added.
type Reason string

const (
	ReasonMatched               Reason = "simulation-replay-matched"
	ReasonExecError             Reason = "simulation-replay-exec-error"
	ReasonMismatchSuccess       Reason = "simulation-replay-mismatch-success"
	ReasonMismatchReturnData    Reason = "simulation-replay-mismatch-return-data"
	ReasonMismatchLogs          Reason = "simulation-replay-mismatch-logs"
	ReasonMismatchGas           Reason = "simulation-replay-mismatch-gas"
	ReasonWitnessIncomplete     Reason = "simulation-witness-incomplete"
)
