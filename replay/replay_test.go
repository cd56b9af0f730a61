package replay

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func hexAccount(addrHex string, code []byte, balance uint64) AccountSnapshot {
	return AccountSnapshot{
		Address: common.HexToAddress(addrHex),
		Balance: uint256.NewInt(balance),
		Storage: map[common.Hash]common.Hash{},
		Code:    code,
	}
}

func TestResolveGasLimitPrefersExplicitReplayGasLimit(t *testing.T) {
	explicit := uint64(123456)
	witness := Witness{ReplayGasLimit: &explicit}
	tx := TransactionRequest{SafeTxGas: uint256.NewInt(999)}
	if got := resolveGasLimit(witness, tx); got != explicit {
		t.Fatalf("resolveGasLimit = %d, want %d", got, explicit)
	}
}

func TestResolveGasLimitFallsBackToSafeTxGas(t *testing.T) {
	tx := TransactionRequest{SafeTxGas: uint256.NewInt(500000)}
	if got := resolveGasLimit(Witness{}, tx); got != 500000 {
		t.Fatalf("resolveGasLimit = %d, want 500000", got)
	}
}

func TestResolveGasLimitDefaultsWhenUnset(t *testing.T) {
	if got := resolveGasLimit(Witness{}, TransactionRequest{}); got != defaultGasLimit {
		t.Fatalf("resolveGasLimit = %d, want %d", got, defaultGasLimit)
	}
}

func TestEvaluateComparisonPriority(t *testing.T) {
	sim := Simulation{Success: true, ReturnData: []byte{0x01}, GasUsed: 100}

	if reason := evaluateComparison(false, []byte{0x01}, nil, 50, sim, false); reason != ReasonMismatchSuccess {
		t.Fatalf("reason = %s, want mismatch-success", reason)
	}
	if reason := evaluateComparison(true, []byte{0x02}, nil, 50, sim, false); reason != ReasonMismatchReturnData {
		t.Fatalf("reason = %s, want mismatch-return-data", reason)
	}
	if reason := evaluateComparison(true, []byte{0x01}, nil, 200, sim, false); reason != ReasonMismatchGas {
		t.Fatalf("reason = %s, want mismatch-gas", reason)
	}
	if reason := evaluateComparison(true, []byte{0x01}, nil, 100, sim, false); reason != ReasonMatched {
		t.Fatalf("reason = %s, want matched", reason)
	}
}

func TestEvaluateComparisonSkipsLogsInWitnessOnlyMode(t *testing.T) {
	sim := Simulation{Success: true, ReturnData: []byte{}, GasUsed: 10, Logs: []Log{{Address: common.HexToAddress("0x01")}}}
	reason := evaluateComparison(true, []byte{}, nil, 10, sim, true)
	if reason != ReasonMatched {
		t.Fatalf("reason = %s, want matched (logs should be skipped in witness-only mode)", reason)
	}
}

func TestLogsEqual(t *testing.T) {
	a := []Log{{Address: common.HexToAddress("0x01"), Topics: []common.Hash{{0x01}}, Data: []byte{0x02}}}
	b := []Log{{Address: common.HexToAddress("0x01"), Topics: []common.Hash{{0x01}}, Data: []byte{0x02}}}
	if !logsEqual(a, b) {
		t.Fatal("expected identical logs to compare equal")
	}
	c := []Log{{Address: common.HexToAddress("0x02")}}
	if logsEqual(a, c) {
		t.Fatal("expected differing logs to compare unequal")
	}
}

func TestVerifySimulationReplayWitnessIncomplete(t *testing.T) {
	result := VerifySimulationReplay(SimulationReplayInput{})
	if result.Executed {
		t.Fatal("expected executed=false with no replay accounts")
	}
	if result.Reason != ReasonWitnessIncomplete {
		t.Fatalf("reason = %s, want %s", result.Reason, ReasonWitnessIncomplete)
	}
}

func TestVerifySimulationReplayRejectsDelegateCall(t *testing.T) {
	caller := common.HexToAddress("0x1000000000000000000000000000000000000001")
	input := SimulationReplayInput{
		SafeAddress: caller,
		Transaction: TransactionRequest{
			To:        common.HexToAddress("0x2000000000000000000000000000000000000002"),
			Value:     uint256.NewInt(0),
			Operation: OperationDelegateCall,
		},
		SimulationWitness: Witness{
			ReplayAccounts: []AccountSnapshot{hexAccount("0x1000000000000000000000000000000000000001", nil, 0)},
		},
	}
	result := VerifySimulationReplay(input)
	if !result.Executed || result.Success {
		t.Fatalf("unexpected result for delegatecall rejection: %+v", result)
	}
	if result.Reason != ReasonExecError {
		t.Fatalf("reason = %s, want %s", result.Reason, ReasonExecError)
	}
}

func TestVerifySimulationReplayWitnessOnlyRequiresBlock(t *testing.T) {
	caller := common.HexToAddress("0x1000000000000000000000000000000000000001")
	input := SimulationReplayInput{
		SafeAddress: caller,
		Transaction: TransactionRequest{
			To:    common.HexToAddress("0x2000000000000000000000000000000000000002"),
			Value: uint256.NewInt(0),
		},
		SimulationWitness: Witness{
			ReplayAccounts: []AccountSnapshot{hexAccount("0x1000000000000000000000000000000000000001", nil, 0)},
			WitnessOnly:    true,
		},
	}
	result := VerifySimulationReplay(input)
	if !result.Executed {
		t.Fatal("expected executed=true even though no EVM call was attempted")
	}
	if result.Success {
		t.Fatal("expected success=false")
	}
	if result.Reason != ReasonExecError {
		t.Fatalf("reason = %s, want %s", result.Reason, ReasonExecError)
	}
}

func TestVerifySimulationReplayReturnDataMismatch(t *testing.T) {
	caller := common.HexToAddress("0x1000000000000000000000000000000000000001")
	target := common.HexToAddress("0x2000000000000000000000000000000000000002")
	// PUSH1 0x2a PUSH1 0x00 MSTORE PUSH1 0x20 PUSH1 0x00 RETURN -- returns a
	// single 32-byte word containing 0x2a.
	runtime := common.FromHex("0x602a60005260206000f3")

	input := SimulationReplayInput{
		SafeAddress: caller,
		Transaction: TransactionRequest{
			To:        target,
			Value:     uint256.NewInt(0),
			Operation: OperationCall,
			SafeTxGas: uint256.NewInt(500000),
		},
		Simulation: Simulation{
			Success:    true,
			ReturnData: []byte{},
			GasUsed:    500000,
		},
		SimulationWitness: Witness{
			ReplayAccounts: []AccountSnapshot{
				hexAccount("0x1000000000000000000000000000000000000001", nil, 0),
				hexAccount("0x2000000000000000000000000000000000000002", runtime, 0),
			},
		},
	}

	result := VerifySimulationReplay(input)
	if result.Reason != ReasonMismatchReturnData {
		t.Fatalf("reason = %s, want %s", result.Reason, ReasonMismatchReturnData)
	}
}

func TestVerifySimulationReplayRevertMatches(t *testing.T) {
	caller := common.HexToAddress("0x1000000000000000000000000000000000000001")
	target := common.HexToAddress("0x2000000000000000000000000000000000000002")
	// PUSH1 0x00 PUSH1 0x00 REVERT -- reverts with empty output.
	runtime := common.FromHex("0x60006000fd")

	input := SimulationReplayInput{
		SafeAddress: caller,
		Transaction: TransactionRequest{
			To:        target,
			Value:     uint256.NewInt(0),
			Operation: OperationCall,
			SafeTxGas: uint256.NewInt(500000),
		},
		Simulation: Simulation{
			Success:    false,
			ReturnData: []byte{},
			GasUsed:    500000,
		},
		SimulationWitness: Witness{
			ReplayAccounts: []AccountSnapshot{
				hexAccount("0x1000000000000000000000000000000000000001", nil, 0),
				hexAccount("0x2000000000000000000000000000000000000002", runtime, 0),
			},
		},
	}

	result := VerifySimulationReplay(input)
	if result.Reason != ReasonMatched || !result.Success {
		t.Fatalf("expected matched replay, got %+v", result)
	}
}
