package replay

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
)

func TestNativeTransferInspectorDiscardsRevertedSubtree(t *testing.T) {
	insp := newNativeTransferInspector()
	factory := common.HexToAddress("0x01")
	created := common.HexToAddress("0x02")
	receiver := common.HexToAddress("0x03")

	// Factory CREATEs `created` with value 2; created's init code calls
	// receiver with value 1, then the whole init code REVERTs.
	insp.onEnter(1, byte(vm.CREATE), factory, created, nil, 0, big.NewInt(2))
	insp.onEnter(2, byte(vm.CALL), created, receiver, nil, 0, big.NewInt(1))
	insp.onExit(2, nil, 0, nil, false) // inner call succeeds
	insp.onExit(1, nil, 0, errors.New("execution reverted"), true) // CREATE reverts

	if got := insp.transfers(); len(got) != 0 {
		t.Fatalf("expected no transfers from a fully reverted CREATE, got %+v", got)
	}
}

func TestNativeTransferInspectorOrdersCommittedNestedCreate(t *testing.T) {
	insp := newNativeTransferInspector()
	factory := common.HexToAddress("0x01")
	created := common.HexToAddress("0x02")
	receiver := common.HexToAddress("0x03")

	insp.onEnter(1, byte(vm.CREATE), factory, created, nil, 0, big.NewInt(2))
	insp.onEnter(2, byte(vm.CALL), created, receiver, nil, 0, big.NewInt(1))
	insp.onExit(2, nil, 0, nil, false)
	insp.onExit(1, nil, 0, nil, false)

	got := insp.transfers()
	if len(got) != 2 {
		t.Fatalf("expected 2 transfers, got %d: %+v", len(got), got)
	}
	if got[0].From != factory || got[0].To != created || got[0].Value.Uint64() != 2 {
		t.Fatalf("unexpected first transfer: %+v", got[0])
	}
	if got[1].From != created || got[1].To != receiver || got[1].Value.Uint64() != 1 {
		t.Fatalf("unexpected second transfer: %+v", got[1])
	}
}

func TestNativeTransferInspectorSelfDestructDoesNotUnbalanceStack(t *testing.T) {
	insp := newNativeTransferInspector()
	caller := common.HexToAddress("0x01")
	contract := common.HexToAddress("0x02")
	beneficiary := common.HexToAddress("0x03")

	insp.onEnter(1, byte(vm.CALL), caller, contract, nil, 0, big.NewInt(0))
	insp.onEnter(1, byte(vm.SELFDESTRUCT), contract, beneficiary, nil, 0, big.NewInt(5))
	insp.onExit(1, nil, 0, nil, false) // matching exit for the selfdestruct event, same depth
	insp.onExit(1, nil, 0, nil, false) // exit for the outer CALL

	got := insp.transfers()
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 transfer (the selfdestruct), got %d: %+v", len(got), got)
	}
	if got[0].From != contract || got[0].To != beneficiary || got[0].Value.Uint64() != 5 {
		t.Fatalf("unexpected selfdestruct transfer: %+v", got[0])
	}
}
