package replay

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
)

// safeCall invokes the EVM the same way evm.Call does, but recovers from
// any panic raised by the interpreter (malformed bytecode, an instruction
// that assumes an invariant the witness snapshot doesn't hold) and reports
// it as a call error instead of letting it escape the verifier.
func safeCall(evm *vm.EVM, caller, addr common.Address, input []byte, gas uint64, value *uint256.Int) (ret []byte, leftOverGas uint64, err error) {
	leftOverGas = gas
	defer func() {
		if r := recover(); r != nil {
			ret = nil
			leftOverGas = 0
			err = fmt.Errorf("evm execution panicked: %v", r)
		}
	}()
	return evm.Call(caller, addr, input, gas, value)
}

// convertLogs adapts the EVM's native log representation to the package's
// wire-friendly Log type.
func convertLogs(raw []*types.Log) []Log {
	logs := make([]Log, len(raw))
	for i, l := range raw {
		logs[i] = Log{Address: l.Address, Topics: l.Topics, Data: l.Data}
	}
	return logs
}

// syntheticTxHash tags the single synthetic transaction executed per
// replay so its logs can be retrieved from the ephemeral StateDB; it never
// leaves this package and carries no on-chain meaning.
var syntheticTxHash = common.Hash{0x01}

// VerifySimulationReplay re-executes a proposed transaction against a
// witness snapshot of EVM state using an embedded go-ethereum EVM, and
// compares the outcome against a previously recorded simulation.
func VerifySimulationReplay(input SimulationReplayInput) SimulationReplayVerificationResult {
	witness := input.SimulationWitness
	tx := input.Transaction

	if len(witness.ReplayAccounts) == 0 {
		return SimulationReplayVerificationResult{
			Executed: false,
			Success:  false,
			Reason:   ReasonWitnessIncomplete,
			Error:    "witness has no replay accounts",
		}
	}

	caller := input.SafeAddress
	if witness.ReplayCaller != nil {
		caller = *witness.ReplayCaller
	}

	if tx.Operation == OperationDelegateCall {
		return SimulationReplayVerificationResult{
			Executed: true,
			Success:  false,
			Reason:   ReasonExecError,
			Error:    "DELEGATECALL has no well-defined replay semantics from a synthetic caller",
		}
	}

	accounts := buildAccountsMap(witness.ReplayAccounts)

	gasLimit := resolveGasLimit(witness, tx)
	gasPrice := resolveGasPrice(witness)
	required := requiredCallerBalance(gasLimit, gasPrice, tx.Value)
	ensureCallerFunded(accounts, caller, required)

	sdb, err := buildStateDB(accounts)
	if err != nil {
		return SimulationReplayVerificationResult{
			Executed: true,
			Success:  false,
			Reason:   ReasonExecError,
			Error:    fmt.Sprintf("failed to construct replay state: %v", err),
		}
	}

	blockCtx, err := buildBlockContext(witness, input.Simulation.BlockNumber)
	if err != nil {
		return SimulationReplayVerificationResult{
			Executed: true,
			Success:  false,
			Reason:   ReasonExecError,
			Error:    err.Error(),
		}
	}

	inspector := newNativeTransferInspector()
	chainConfig := chainConfigForReplay(input.ChainID)
	evm := vm.NewEVM(blockCtx, sdb, chainConfig, vm.Config{Tracer: inspector.hooks()})
	evm.SetTxContext(vm.TxContext{
		Origin:   caller,
		GasPrice: gasPrice.ToBig(),
	})

	sdb.SetTxContext(syntheticTxHash, 0)

	ret, leftOverGas, callErr := safeCall(evm, caller, tx.To, tx.Data, gasLimit, tx.Value)

	reverted, haltReason := classifyCallError(callErr)
	gasUsed := gasLimit - leftOverGas

	var (
		success    bool
		returnData []byte
		logs       []Log
	)

	switch {
	case callErr == nil:
		success = true
		returnData = ret
		logs = convertLogs(sdb.GetLogs(syntheticTxHash, input.Simulation.BlockNumber, common.Hash{}))
	case reverted:
		success = false
		returnData = ret
		logs = nil
	default:
		success = false
		returnData = []byte{}
		logs = []Log{syntheticHaltLog(haltReason)}
	}

	transfers := inspector.transfers()

	reason := evaluateComparison(success, returnData, logs, gasUsed, input.Simulation, witness.WitnessOnly)

	result := SimulationReplayVerificationResult{
		Executed:              true,
		Success:               reason == ReasonMatched,
		Reason:                reason,
		ReplayLogs:            logs,
		ReplayNativeTransfers: transfers,
	}
	if reason != ReasonMatched {
		result.Error = string(reason)
	}
	return result
}
