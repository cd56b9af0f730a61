package consensus

import (
	blst "github.com/supranational/blst/bindings/go"
)

// blsSignatureDST is the domain separation tag for Ethereum consensus BLS
// signatures (MinPk scheme: pubkeys in G1, signatures in G2). This is the
// real Ethereum consensus-layer DST, not the deposit-contract DST.
var blsSignatureDST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

// fastAggregateVerify verifies that sig is a valid aggregate BLS signature
// by all of pubkeys over the single message msg. It recovers from any panic
// raised by the underlying blst bindings on malformed point encodings and
// reports that as a verification failure rather than letting it escape.
func fastAggregateVerify(pubkeys []BLSPubkey, msg []byte, sig BLSSignature) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	if len(pubkeys) == 0 {
		return false
	}

	s := new(blst.P2Affine).Uncompress(sig[:])
	if s == nil {
		return false
	}

	pks := make([]*blst.P1Affine, len(pubkeys))
	for i, pk := range pubkeys {
		pks[i] = new(blst.P1Affine).Uncompress(pk[:])
		if pks[i] == nil {
			return false
		}
	}

	return s.FastAggregateVerify(true, pks, msg, blsSignatureDST)
}

// aggregateVerify verifies that sig is a valid aggregate BLS signature
// where pubkeys[i] signed msgs[i]. Unused by the current verification
// procedure (every Ethereum sync-committee signature is over a single
// signing root), but kept as the general-case counterpart to
// fastAggregateVerify, grounded on the same blst API surface.
func aggregateVerify(pubkeys []BLSPubkey, msgs [][]byte, sig BLSSignature) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	n := len(pubkeys)
	if n == 0 || n != len(msgs) {
		return false
	}

	s := new(blst.P2Affine).Uncompress(sig[:])
	if s == nil {
		return false
	}

	pks := make([]*blst.P1Affine, n)
	for i, pk := range pubkeys {
		pks[i] = new(blst.P1Affine).Uncompress(pk[:])
		if pks[i] == nil {
			return false
		}
	}

	blstMsgs := make([]blst.Message, n)
	for i, m := range msgs {
		blstMsgs[i] = m
	}

	return s.AggregateVerify(true, pks, true, blstMsgs, blsSignatureDST)
}

// hasSyncCommitteeQuorum reports whether the number of participating
// signers meets the 2/3 supermajority threshold required to accept a sync
// committee attestation.
func hasSyncCommitteeQuorum(participants, committeeSize int) bool {
	return 3*participants >= 2*committeeSize
}
