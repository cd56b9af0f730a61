package consensus

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Th0rgal/SafeLens/codec"
)

// BLSPubkey is a compressed G1 BLS12-381 public key, as used for sync
// committee members.
type BLSPubkey [48]byte

// BLSSignature is a compressed G2 BLS12-381 signature.
type BLSSignature [96]byte

// BeaconBlockHeader is the minimal light-client view of a beacon block
// header: the five SSZ fields needed to compute its hash tree root.
type BeaconBlockHeader struct {
	Slot          uint64
	ProposerIndex uint64
	ParentRoot    common.Hash
	StateRoot     common.Hash
	BodyRoot      common.Hash
}

// SyncCommittee is a beacon-chain sync committee: a fixed-size vector of
// member public keys plus their aggregate.
type SyncCommittee struct {
	Pubkeys         []BLSPubkey
	AggregatePubkey BLSPubkey
}

// ExecutionPayloadHeader is the subset of the post-Capella execution
// payload header the verifier cares about: the fields that authenticate
// the EVM-side state.
type ExecutionPayloadHeader struct {
	BlockNumber uint64
	StateRoot   common.Hash
}

// SyncAggregate carries the sync committee's aggregate BLS signature over a
// signing root, and a bitfield of which members participated.
type SyncAggregate struct {
	SyncCommitteeBits      []byte
	SyncCommitteeSignature BLSSignature
}

// ParticipantCount returns the population count of the participation
// bitfield, capped at committeeSize.
func (sa SyncAggregate) ParticipantCount(committeeSize int) int {
	count := 0
	for i := 0; i < committeeSize; i++ {
		byteIdx, bitIdx := i/8, uint(i%8)
		if byteIdx < len(sa.SyncCommitteeBits) && sa.SyncCommitteeBits[byteIdx]&(1<<bitIdx) != 0 {
			count++
		}
	}
	return count
}

// ParticipantPubkeys returns the subset of committee.Pubkeys whose
// participation bit is set.
func (sa SyncAggregate) ParticipantPubkeys(committee *SyncCommittee) []BLSPubkey {
	var out []BLSPubkey
	for i, pk := range committee.Pubkeys {
		byteIdx, bitIdx := i/8, uint(i%8)
		if byteIdx < len(sa.SyncCommitteeBits) && sa.SyncCommitteeBits[byteIdx]&(1<<bitIdx) != 0 {
			out = append(out, pk)
		}
	}
	return out
}

// Bootstrap is the initial signed beacon header plus current sync
// committee and its Merkle inclusion proof.
type Bootstrap struct {
	Header                     BeaconBlockHeader
	CurrentSyncCommittee       SyncCommittee
	CurrentSyncCommitteeBranch []common.Hash
}

// Update carries a sync-committee-attested header, the next sync
// committee, and a fork descriptor (implicit in SignatureSlot's epoch).
type Update struct {
	AttestedHeader          BeaconBlockHeader
	NextSyncCommittee       *SyncCommittee
	NextSyncCommitteeBranch []common.Hash
	FinalizedHeader         BeaconBlockHeader
	FinalityBranch          []common.Hash
	SyncAggregate           SyncAggregate
	SignatureSlot           uint64
}

// FinalityUpdate carries a signed attested header, a finalized header, and
// (post-Capella) the execution payload it commits to.
type FinalityUpdate struct {
	AttestedHeader   BeaconBlockHeader
	FinalizedHeader  BeaconBlockHeader
	FinalityBranch   []common.Hash
	SyncAggregate    SyncAggregate
	SignatureSlot    uint64
	ExecutionPayload *ExecutionPayloadHeader
}

// --- JSON wire format -------------------------------------------------
//
// Beacon-API JSON encodes every integer and root as a decimal/hex string,
// not a native JSON number, to avoid float64 precision loss on 64-bit
// values. The evidence package's bootstrap/update/finalityUpdate fields
// arrive as pre-serialized JSON strings (spec.md: "carried as strings to
// defer parsing"), so these are the shapes Unmarshal targets.

type headerJSON struct {
	Slot          string `json:"slot"`
	ProposerIndex string `json:"proposer_index"`
	ParentRoot    string `json:"parent_root"`
	StateRoot     string `json:"state_root"`
	BodyRoot      string `json:"body_root"`
}

func (h headerJSON) decode() (BeaconBlockHeader, error) {
	slot, err := strconv.ParseUint(h.Slot, 10, 64)
	if err != nil {
		return BeaconBlockHeader{}, fmt.Errorf("slot: %w", err)
	}
	proposer, err := strconv.ParseUint(h.ProposerIndex, 10, 64)
	if err != nil {
		return BeaconBlockHeader{}, fmt.Errorf("proposer_index: %w", err)
	}
	parent, err := codec.ParseRoot(h.ParentRoot)
	if err != nil {
		return BeaconBlockHeader{}, fmt.Errorf("parent_root: %w", err)
	}
	state, err := codec.ParseRoot(h.StateRoot)
	if err != nil {
		return BeaconBlockHeader{}, fmt.Errorf("state_root: %w", err)
	}
	body, err := codec.ParseRoot(h.BodyRoot)
	if err != nil {
		return BeaconBlockHeader{}, fmt.Errorf("body_root: %w", err)
	}
	return BeaconBlockHeader{
		Slot:          slot,
		ProposerIndex: proposer,
		ParentRoot:    parent,
		StateRoot:     state,
		BodyRoot:      body,
	}, nil
}

type syncCommitteeJSON struct {
	Pubkeys         []string `json:"pubkeys"`
	AggregatePubkey string   `json:"aggregate_pubkey"`
}

func (s syncCommitteeJSON) decode() (SyncCommittee, error) {
	pubkeys := make([]BLSPubkey, len(s.Pubkeys))
	for i, p := range s.Pubkeys {
		b, err := codec.ParseBytes(p)
		if err != nil || len(b) != 48 {
			return SyncCommittee{}, fmt.Errorf("pubkeys[%d]: invalid BLS pubkey", i)
		}
		copy(pubkeys[i][:], b)
	}
	agg, err := codec.ParseBytes(s.AggregatePubkey)
	if err != nil || len(agg) != 48 {
		return SyncCommittee{}, fmt.Errorf("aggregate_pubkey: invalid BLS pubkey")
	}
	var aggregate BLSPubkey
	copy(aggregate[:], agg)
	return SyncCommittee{Pubkeys: pubkeys, AggregatePubkey: aggregate}, nil
}

func decodeBranch(raw []string) ([]common.Hash, error) {
	out := make([]common.Hash, len(raw))
	for i, s := range raw {
		h, err := codec.ParseRoot(s)
		if err != nil {
			return nil, fmt.Errorf("branch[%d]: %w", i, err)
		}
		out[i] = h
	}
	return out, nil
}

type syncAggregateJSON struct {
	SyncCommitteeBits      string `json:"sync_committee_bits"`
	SyncCommitteeSignature string `json:"sync_committee_signature"`
}

func (s syncAggregateJSON) decode() (SyncAggregate, error) {
	bits, err := codec.ParseBytes(s.SyncCommitteeBits)
	if err != nil {
		return SyncAggregate{}, fmt.Errorf("sync_committee_bits: %w", err)
	}
	sigBytes, err := codec.ParseBytes(s.SyncCommitteeSignature)
	if err != nil || len(sigBytes) != 96 {
		return SyncAggregate{}, fmt.Errorf("sync_committee_signature: invalid BLS signature")
	}
	var sig BLSSignature
	copy(sig[:], sigBytes)
	return SyncAggregate{SyncCommitteeBits: bits, SyncCommitteeSignature: sig}, nil
}

type bootstrapJSON struct {
	Header                     headerJSON        `json:"header"`
	CurrentSyncCommittee       syncCommitteeJSON `json:"current_sync_committee"`
	CurrentSyncCommitteeBranch []string          `json:"current_sync_committee_branch"`
}

// ParseBootstrap decodes a bootstrap JSON payload.
func ParseBootstrap(raw string) (*Bootstrap, error) {
	var bj bootstrapJSON
	if err := json.Unmarshal([]byte(raw), &bj); err != nil {
		return nil, err
	}
	header, err := bj.Header.decode()
	if err != nil {
		return nil, err
	}
	committee, err := bj.CurrentSyncCommittee.decode()
	if err != nil {
		return nil, err
	}
	branch, err := decodeBranch(bj.CurrentSyncCommitteeBranch)
	if err != nil {
		return nil, err
	}
	return &Bootstrap{
		Header:                     header,
		CurrentSyncCommittee:       committee,
		CurrentSyncCommitteeBranch: branch,
	}, nil
}

type updateJSON struct {
	AttestedHeader          headerJSON         `json:"attested_header"`
	NextSyncCommittee       *syncCommitteeJSON `json:"next_sync_committee,omitempty"`
	NextSyncCommitteeBranch []string           `json:"next_sync_committee_branch,omitempty"`
	FinalizedHeader         headerJSON         `json:"finalized_header"`
	FinalityBranch          []string           `json:"finality_branch"`
	SyncAggregate           syncAggregateJSON  `json:"sync_aggregate"`
	SignatureSlot           string             `json:"signature_slot"`
}

// ParseUpdate decodes a light client update JSON payload.
func ParseUpdate(raw string) (*Update, error) {
	var uj updateJSON
	if err := json.Unmarshal([]byte(raw), &uj); err != nil {
		return nil, err
	}
	attested, err := uj.AttestedHeader.decode()
	if err != nil {
		return nil, err
	}
	finalized, err := uj.FinalizedHeader.decode()
	if err != nil {
		return nil, err
	}
	finalityBranch, err := decodeBranch(uj.FinalityBranch)
	if err != nil {
		return nil, err
	}
	agg, err := uj.SyncAggregate.decode()
	if err != nil {
		return nil, err
	}
	sigSlot, err := strconv.ParseUint(uj.SignatureSlot, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("signature_slot: %w", err)
	}

	var nextCommittee *SyncCommittee
	var nextBranch []common.Hash
	if uj.NextSyncCommittee != nil {
		c, err := uj.NextSyncCommittee.decode()
		if err != nil {
			return nil, err
		}
		nextCommittee = &c
		nextBranch, err = decodeBranch(uj.NextSyncCommitteeBranch)
		if err != nil {
			return nil, err
		}
	}

	return &Update{
		AttestedHeader:          attested,
		NextSyncCommittee:       nextCommittee,
		NextSyncCommitteeBranch: nextBranch,
		FinalizedHeader:         finalized,
		FinalityBranch:          finalityBranch,
		SyncAggregate:           agg,
		SignatureSlot:           sigSlot,
	}, nil
}

type executionPayloadHeaderJSON struct {
	BlockNumber string `json:"block_number"`
	StateRoot   string `json:"state_root"`
}

type finalityUpdateJSON struct {
	AttestedHeader   headerJSON                  `json:"attested_header"`
	FinalizedHeader  headerJSON                  `json:"finalized_header"`
	FinalityBranch   []string                    `json:"finality_branch"`
	SyncAggregate    syncAggregateJSON           `json:"sync_aggregate"`
	SignatureSlot    string                      `json:"signature_slot"`
	ExecutionPayload *executionPayloadHeaderJSON `json:"execution_payload,omitempty"`
}

// ParseFinalityUpdate decodes a finality update JSON payload.
func ParseFinalityUpdate(raw string) (*FinalityUpdate, error) {
	var fj finalityUpdateJSON
	if err := json.Unmarshal([]byte(raw), &fj); err != nil {
		return nil, err
	}
	attested, err := fj.AttestedHeader.decode()
	if err != nil {
		return nil, err
	}
	finalized, err := fj.FinalizedHeader.decode()
	if err != nil {
		return nil, err
	}
	finalityBranch, err := decodeBranch(fj.FinalityBranch)
	if err != nil {
		return nil, err
	}
	agg, err := fj.SyncAggregate.decode()
	if err != nil {
		return nil, err
	}
	sigSlot, err := strconv.ParseUint(fj.SignatureSlot, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("signature_slot: %w", err)
	}

	var payload *ExecutionPayloadHeader
	if fj.ExecutionPayload != nil {
		blockNumber, err := strconv.ParseUint(fj.ExecutionPayload.BlockNumber, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("execution_payload.block_number: %w", err)
		}
		stateRoot, err := codec.ParseRoot(fj.ExecutionPayload.StateRoot)
		if err != nil {
			return nil, fmt.Errorf("execution_payload.state_root: %w", err)
		}
		payload = &ExecutionPayloadHeader{BlockNumber: blockNumber, StateRoot: stateRoot}
	}

	return &FinalityUpdate{
		AttestedHeader:   attested,
		FinalizedHeader:  finalized,
		FinalityBranch:   finalityBranch,
		SyncAggregate:    agg,
		SignatureSlot:    sigSlot,
		ExecutionPayload: payload,
	}, nil
}
