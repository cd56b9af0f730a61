package replay

import "bytes"

// logsEqual implements the normalized sequence-equality comparison: same
// length, each entry's address/topics/data equal. Both sides are already
// canonicalized (lowercased, 0x-normalized) by the wire decoder and by the
// EVM's own log representation, so this is a direct structural comparison.
func logsEqual(a, b []Log) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Address != b[i].Address {
			return false
		}
		if len(a[i].Topics) != len(b[i].Topics) {
			return false
		}
		for j := range a[i].Topics {
			if a[i].Topics[j] != b[i].Topics[j] {
				return false
			}
		}
		if !bytes.Equal(a[i].Data, b[i].Data) {
			return false
		}
	}
	return true
}

// bytesEqual treats a nil slice and an empty slice as equal, matching the
// wire decoder's convention that an absent hex value decodes to "0x".
func bytesEqual(a, b []byte) bool {
	return bytes.Equal(a, b)
}

// evaluateComparison implements the replay comparison policy: the first
// failing check wins, in the fixed priority order success > return data >
// logs > gas ceiling.
func evaluateComparison(replaySuccess bool, replayReturnData []byte, replayLogs []Log, replayGasUsed uint64, recorded Simulation, witnessOnly bool) Reason {
	if replaySuccess != recorded.Success {
		return ReasonMismatchSuccess
	}
	if !bytesEqual(replayReturnData, recorded.ReturnData) {
		return ReasonMismatchReturnData
	}
	if !witnessOnly && !logsEqual(replayLogs, recorded.Logs) {
		return ReasonMismatchLogs
	}
	if replayGasUsed > recorded.GasUsed {
		return ReasonMismatchGas
	}
	return ReasonMatched
}
