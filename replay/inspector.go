package replay

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
)

// nativeTransferInspector observes every call and create frame during
// execution and maintains a stack of per-frame transfer buffers, so that a
// revert correctly discards transfers performed inside the reverted
// subtree instead of leaking them into the finalized list.
//
// SELFDESTRUCT does not open a new call frame in the underlying tracing
// hooks -- it fires an OnEnter/OnExit pair at the *same* depth as the
// executing contract, purely to report the value movement. The inspector
// tracks that with selfDestructPending so the matching OnExit does not pop
// a frame that was never pushed.
type nativeTransferInspector struct {
	buffers             [][]NativeTransfer
	frames              []frameInfo
	selfDestructPending int
	finalized           []NativeTransfer
}

type frameInfo struct {
	from  common.Address
	to    common.Address
	value *uint256.Int
}

func newNativeTransferInspector() *nativeTransferInspector {
	return &nativeTransferInspector{}
}

func isSelfDestruct(typ byte) bool {
	return vm.OpCode(typ) == vm.SELFDESTRUCT
}

func (n *nativeTransferInspector) hooks() *tracing.Hooks {
	return &tracing.Hooks{
		OnEnter: n.onEnter,
		OnExit:  n.onExit,
	}
}

func (n *nativeTransferInspector) onEnter(depth int, typ byte, from, to common.Address, input []byte, gas uint64, value *big.Int) {
	// go-ethereum passes a nil value for STATICCALL/DELEGATECALL frames,
	// which have no value transfer; FromBig panics on a nil *big.Int, so it
	// must never be called with one.
	var v *uint256.Int
	if value != nil {
		v, _ = uint256.FromBig(value)
	}
	if v == nil {
		v = uint256.NewInt(0)
	}

	if isSelfDestruct(typ) {
		n.selfDestructPending++
		if v.Sign() > 0 && len(n.buffers) > 0 {
			top := len(n.buffers) - 1
			n.buffers[top] = append(n.buffers[top], NativeTransfer{From: from, To: to, Value: v})
		}
		return
	}

	n.buffers = append(n.buffers, nil)
	n.frames = append(n.frames, frameInfo{from: from, to: to, value: v})
}

func (n *nativeTransferInspector) onExit(depth int, output []byte, gasUsed uint64, err error, reverted bool) {
	if n.selfDestructPending > 0 {
		n.selfDestructPending--
		return
	}
	if len(n.frames) == 0 {
		return
	}

	lastIdx := len(n.frames) - 1
	frame := n.frames[lastIdx]
	popped := n.buffers[lastIdx]
	n.frames = n.frames[:lastIdx]
	n.buffers = n.buffers[:lastIdx]

	if reverted || err != nil {
		return
	}

	var contribution []NativeTransfer
	if frame.value.Sign() > 0 {
		contribution = append(contribution, NativeTransfer{From: frame.from, To: frame.to, Value: frame.value})
	}
	contribution = append(contribution, popped...)

	if len(n.buffers) == 0 {
		n.finalized = append(n.finalized, contribution...)
		return
	}
	parent := len(n.buffers) - 1
	n.buffers[parent] = append(n.buffers[parent], contribution...)
}

// transfers returns the finalized, chronologically-ordered list of
// committed native transfers once execution has completed at the top
// level.
func (n *nativeTransferInspector) transfers() []NativeTransfer {
	return n.finalized
}
