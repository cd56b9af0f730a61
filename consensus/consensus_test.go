package consensus

import (
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

func TestParseNetworkAlias(t *testing.T) {
	gnosis, err := ParseNetwork("gnosis")
	if err != nil {
		t.Fatalf("ParseNetwork(gnosis): %v", err)
	}
	xdai, err := ParseNetwork("xdai")
	if err != nil {
		t.Fatalf("ParseNetwork(xdai): %v", err)
	}
	if xdai.Name != gnosis.Name || xdai.GenesisTime != gnosis.GenesisTime {
		t.Fatalf("xdai alias did not resolve to gnosis config: %+v vs %+v", xdai, gnosis)
	}
}

func TestParseNetworkUnsupported(t *testing.T) {
	if _, err := ParseNetwork("polygon"); err == nil {
		t.Fatal("expected error for unsupported network")
	}
}

func TestExpectedCurrentSlotExact(t *testing.T) {
	net, _ := ParseNetwork("mainnet")
	const k = 1000
	now := time.Unix(int64(net.GenesisTime+k*net.SecondsPerSlot), 0)
	if got := expectedCurrentSlot(now, net); got != k {
		t.Fatalf("expectedCurrentSlot = %d, want %d", got, k)
	}
}

func TestExpectedCurrentSlotBeforeGenesisSaturatesZero(t *testing.T) {
	net, _ := ParseNetwork("mainnet")
	before := time.Unix(int64(net.GenesisTime)-1000, 0)
	if got := expectedCurrentSlot(before, net); got != 0 {
		t.Fatalf("expectedCurrentSlot before genesis = %d, want 0", got)
	}
}

func TestMerkleizeChunksPadsToPowerOfTwo(t *testing.T) {
	leaves := []common.Hash{
		common.BytesToHash([]byte("a")),
		common.BytesToHash([]byte("b")),
		common.BytesToHash([]byte("c")),
	}
	root := merkleizeChunks(leaves)
	padded := []common.Hash{leaves[0], leaves[1], leaves[2], {}}
	want := sha256Pair(sha256Pair(padded[0], padded[1]), sha256Pair(padded[2], padded[3]))
	if root != want {
		t.Fatalf("merkleizeChunks padding mismatch: got %x want %x", root, want)
	}
}

func TestIsValidMerkleBranchRoundTrip(t *testing.T) {
	leaf := common.BytesToHash([]byte("leaf"))
	sibling0 := common.BytesToHash([]byte("sib0"))
	sibling1 := common.BytesToHash([]byte("sib1"))

	// index 0b01 at depth 2: leaf is the right child at level 0, left child at level 1.
	level0 := sha256Pair(sibling0, leaf)
	root := sha256Pair(level0, sibling1)

	branch := []common.Hash{sibling0, sibling1}
	if !isValidMerkleBranch(leaf, branch, 2, 0b01, root) {
		t.Fatal("expected valid branch to verify")
	}
	if isValidMerkleBranch(leaf, branch, 2, 0b10, root) {
		t.Fatal("expected wrong generalized index to fail verification")
	}
}

func TestAggregateVerifyRejectsMalformedPoints(t *testing.T) {
	var sig BLSSignature // all-zero, not a valid compressed G2 point
	pubkeys := []BLSPubkey{{}, {}}
	msgs := [][]byte{[]byte("a"), []byte("b")}
	if aggregateVerify(pubkeys, msgs, sig) {
		t.Fatal("expected aggregateVerify to reject malformed zero-valued points")
	}
}

func TestAggregateVerifyRejectsMismatchedLengths(t *testing.T) {
	var sig BLSSignature
	pubkeys := []BLSPubkey{{}}
	msgs := [][]byte{[]byte("a"), []byte("b")}
	if aggregateVerify(pubkeys, msgs, sig) {
		t.Fatal("expected aggregateVerify to reject mismatched pubkey/message counts")
	}
}

func TestSyncAggregateParticipantCount(t *testing.T) {
	agg := SyncAggregate{SyncCommitteeBits: []byte{0b00000111}}
	if got := agg.ParticipantCount(8); got != 3 {
		t.Fatalf("ParticipantCount = %d, want 3", got)
	}
}

func TestVerifyConsensusProofUnsupportedNetwork(t *testing.T) {
	input := ConsensusProofInput{
		Checkpoint:        "0x" + strings.Repeat("11", 32),
		Network:           "polygon",
		ExpectedStateRoot: "0x" + strings.Repeat("22", 32),
	}
	result := VerifyConsensusProof(input)
	if result.Valid {
		t.Fatal("expected invalid result for unsupported network")
	}
	if result.ErrorCode != ErrUnsupportedNetwork {
		t.Fatalf("errorCode = %q, want %q", result.ErrorCode, ErrUnsupportedNetwork)
	}
}

func TestVerifyConsensusProofInvalidCheckpoint(t *testing.T) {
	input := ConsensusProofInput{
		Checkpoint: "0x1234",
		Network:    "mainnet",
	}
	result := VerifyConsensusProof(input)
	if result.Valid {
		t.Fatal("expected invalid result for malformed checkpoint")
	}
	if result.ErrorCode != ErrInvalidCheckpointHash {
		t.Fatalf("errorCode = %q, want %q", result.ErrorCode, ErrInvalidCheckpointHash)
	}
}

func TestVerifyConsensusProofNonBeaconEnvelopeMatch(t *testing.T) {
	input := ConsensusProofInput{
		ConsensusMode:     "custom-rollup",
		Network:           "mainnet",
		PackageChainID:    "1",
		BlockNumber:       "0x10",
		ExpectedStateRoot: "0xabc123",
		ProofPayload:      `{"consensusMode":"custom-rollup","chainId":"1","block":{"number":"0x10","stateRoot":"0xabc123"}}`,
	}
	result := VerifyConsensusProof(input)
	if result.Valid {
		t.Fatal("non-beacon mode must never report valid=true")
	}
	if result.ErrorCode != ErrUnsupportedConsensusMode {
		t.Fatalf("errorCode = %q, want %q", result.ErrorCode, ErrUnsupportedConsensusMode)
	}
	if !result.StateRootMatches {
		t.Fatal("expected stateRootMatches=true for a structurally matching envelope")
	}
}

func TestVerifyConsensusProofNonBeaconEnvelopeInvalidPayload(t *testing.T) {
	input := ConsensusProofInput{
		ConsensusMode: "custom-rollup",
		Network:       "mainnet",
		ProofPayload:  "not json",
	}
	result := VerifyConsensusProof(input)
	if result.ErrorCode != ErrInvalidProofPayload {
		t.Fatalf("errorCode = %q, want %q", result.ErrorCode, ErrInvalidProofPayload)
	}
}

func TestLightClientStoreRotatesCommitteeAcrossPeriod(t *testing.T) {
	spec := MainnetSpec
	next := SyncCommittee{AggregatePubkey: BLSPubkey{0x02}}
	store := &LightClientStore{
		CurrentSyncCommittee: SyncCommittee{AggregatePubkey: BLSPubkey{0x01}},
		NextSyncCommittee:    &next,
		FinalizedHeader:      BeaconBlockHeader{Slot: 0},
	}
	update := &Update{
		AttestedHeader: BeaconBlockHeader{Slot: spec.SlotsPerEpoch * spec.EpochsPerSyncCommitteePeriod},
		FinalizedHeader: BeaconBlockHeader{
			Slot: spec.SlotsPerEpoch * spec.EpochsPerSyncCommitteePeriod,
		},
	}
	store.ApplyUpdate(update, spec)
	if store.CurrentSyncCommittee.AggregatePubkey != next.AggregatePubkey {
		t.Fatal("expected next sync committee to rotate into current on period boundary")
	}
}
