package replay

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"
)

const defaultGasLimit uint64 = 3_000_000

var errWitnessOnlyRequiresBlock = errors.New("replay: witness_only mode requires an explicit replay block")

// resolveGasLimit implements step 4 of the replay procedure: an explicit
// replay_gas_limit wins outright; otherwise safe_tx_gas is used (capped at
// 2^64-1, with a zero value treated as "unset"); failing both, the default
// applies.
func resolveGasLimit(witness Witness, tx TransactionRequest) uint64 {
	if witness.ReplayGasLimit != nil {
		return *witness.ReplayGasLimit
	}
	if tx.SafeTxGas != nil && !tx.SafeTxGas.IsZero() {
		if tx.SafeTxGas.IsUint64() {
			return tx.SafeTxGas.Uint64()
		}
		return ^uint64(0)
	}
	return defaultGasLimit
}

// resolveGasPrice implements step 5: the replay block's base fee if one is
// supplied, otherwise zero. Gas price only drives the caller funding
// pre-check; it plays no role in the comparison policy.
func resolveGasPrice(witness Witness) *uint256.Int {
	if witness.ReplayBlock != nil && witness.ReplayBlock.BaseFeePerGas != nil {
		return witness.ReplayBlock.BaseFeePerGas.Clone()
	}
	return uint256.NewInt(0)
}

// buildBlockContext implements step 7: use the witness's block if present;
// a witness_only request without one is an error; otherwise synthesize a
// minimal block carrying only the simulation's recorded block number.
func buildBlockContext(witness Witness, fallbackBlockNumber uint64) (vm.BlockContext, error) {
	if witness.ReplayBlock == nil {
		if witness.WitnessOnly {
			return vm.BlockContext{}, errWitnessOnlyRequiresBlock
		}
		return vm.BlockContext{
			CanTransfer: vm.CanTransfer,
			Transfer:    vm.Transfer,
			BlockNumber: new(big.Int).SetUint64(fallbackBlockNumber),
			Time:        0,
			Difficulty:  new(big.Int),
			GasLimit:    defaultGasLimit,
			BaseFee:     new(big.Int),
		}, nil
	}

	rb := witness.ReplayBlock
	blockCtx := vm.BlockContext{
		CanTransfer: vm.CanTransfer,
		Transfer:    vm.Transfer,
		BlockNumber: new(big.Int).SetUint64(fallbackBlockNumber),
		Time:        rb.Timestamp,
		GasLimit:    rb.GasLimit,
		Coinbase:    rb.Beneficiary,
		Difficulty:  new(big.Int),
		BaseFee:     new(big.Int),
	}
	if rb.BaseFeePerGas != nil {
		blockCtx.BaseFee = rb.BaseFeePerGas.ToBig()
	}
	if rb.Difficulty != nil {
		blockCtx.Difficulty = rb.Difficulty.ToBig()
	}
	if rb.PrevRandao != nil {
		random := *rb.PrevRandao
		blockCtx.Random = &random
	}
	return blockCtx, nil
}

// chainConfigForReplay builds a post-Prague-equivalent chain config (every
// fork enabled, matching an embedded EVM's need to execute arbitrary
// present-day bytecode) with its chain id overridden to the replay
// package's declared chain id -- the latest known-good source applies
// chain id to both the transaction and the EVM's own configuration.
func chainConfigForReplay(chainID uint64) *params.ChainConfig {
	cfg := *params.TestChainConfig
	cfg.ChainID = new(big.Int).SetUint64(chainID)
	return &cfg
}

// requiredCallerBalance computes gas_limit * gas_price + value, the
// pre-funding amount the caller must hold for the replay to proceed
// without spurious insufficient-funds failures.
func requiredCallerBalance(gasLimit uint64, gasPrice, value *uint256.Int) *uint256.Int {
	cost := new(uint256.Int).Mul(uint256.NewInt(gasLimit), gasPrice)
	return cost.Add(cost, value)
}

// classifyCallError distinguishes a REVERT (which carries meaningful return
// data) from every other EVM halt condition (out-of-gas, invalid opcode,
// stack errors, and similar), which carry none.
func classifyCallError(err error) (reverted bool, haltReason string) {
	if err == nil {
		return false, ""
	}
	if errors.Is(err, vm.ErrExecutionReverted) {
		return true, ""
	}
	return false, err.Error()
}

// syntheticHaltLog builds the single diagnostic log entry emitted on a halt
// (out-of-gas, invalid opcode, and similar non-revert EVM failures), per
// the execution-result mapping.
func syntheticHaltLog(reason string) Log {
	return Log{
		Address: common.Address{},
		Topics:  nil,
		Data:    []byte("halt:" + reason),
	}
}
