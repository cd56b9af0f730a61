package consensus

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ForkVersion is the 4-byte fork version mixed into the BLS signing domain.
type ForkVersion [4]byte

// ForkEntry pairs an epoch with the fork version active from that epoch
// onward.
type ForkEntry struct {
	Epoch   uint64
	Version ForkVersion
}

// ForkSchedule is the ordered list of (epoch, fork_version) pairs for a
// network. Epochs are weakly monotonic, as required by spec.
type ForkSchedule []ForkEntry

// ActiveAt returns the fork entry in effect at the given epoch: the last
// entry whose Epoch is <= epoch.
func (fs ForkSchedule) ActiveAt(epoch uint64) ForkEntry {
	active := fs[0]
	for _, f := range fs {
		if f.Epoch <= epoch {
			active = f
		}
	}
	return active
}

// AltairEpoch returns the epoch at which the altair fork (the first fork to
// carry a sync committee) activates, or ^uint64(0) if the schedule somehow
// lacks an altair entry (never true for the built-in networks).
func (fs ForkSchedule) AltairEpoch() uint64 {
	if len(fs) <= forkIdxAltair {
		return ^uint64(0)
	}
	return fs[forkIdxAltair].Epoch
}

func fv(b0, b1, b2, b3 byte) ForkVersion { return ForkVersion{b0, b1, b2, b3} }

// NetworkConfig bundles everything the consensus verifier needs to know
// about a specific beacon chain network.
type NetworkConfig struct {
	Name                  string
	GenesisValidatorsRoot common.Hash
	GenesisTime           uint64
	SecondsPerSlot        uint64
	Forks                 ForkSchedule
	Spec                  SpecParams
}

// Indices into a network's ForkSchedule, in activation order.
const (
	forkIdxGenesis = iota
	forkIdxAltair
	forkIdxBellatrix
	forkIdxCapella
	forkIdxDeneb
	forkIdxElectra
	forkIdxFulu
)

var networks = map[string]NetworkConfig{
	// Mainnet and sepolia genesis/fork constants are reproduced from the
	// desktop app's original Rust implementation (consensus.rs), which in
	// turn sourced them from the canonical beacon-chain network configs.
	"mainnet": {
		Name:                "mainnet",
		GenesisValidatorsRoot: common.HexToHash("0x4b363db94e286120d76eb905340fdd4e54bfe9f06bf33ff6cf5ad27f511bfe95"),
		GenesisTime:         1606824023,
		SecondsPerSlot:      12,
		Spec:                MainnetSpec,
		Forks: ForkSchedule{
			{Epoch: 0, Version: fv(0x00, 0x00, 0x00, 0x00)},
			{Epoch: 74240, Version: fv(0x01, 0x00, 0x00, 0x00)},
			{Epoch: 144896, Version: fv(0x02, 0x00, 0x00, 0x00)},
			{Epoch: 194048, Version: fv(0x03, 0x00, 0x00, 0x00)},
			{Epoch: 269568, Version: fv(0x04, 0x00, 0x00, 0x00)},
			{Epoch: 364032, Version: fv(0x05, 0x00, 0x00, 0x00)},
			{Epoch: 411392, Version: fv(0x06, 0x00, 0x00, 0x00)},
		},
	},
	"sepolia": {
		Name:                "sepolia",
		GenesisValidatorsRoot: common.HexToHash("0xd8ea171f3c94aea21ebc42a1ed61052acf3f9209c00e4efbaaddac09ed9b8078"),
		GenesisTime:         1655733600,
		SecondsPerSlot:      12,
		Spec:                MainnetSpec,
		Forks: ForkSchedule{
			{Epoch: 0, Version: fv(0x90, 0x00, 0x00, 0x69)},
			{Epoch: 50, Version: fv(0x90, 0x00, 0x00, 0x70)},
			{Epoch: 100, Version: fv(0x90, 0x00, 0x00, 0x71)},
			{Epoch: 56832, Version: fv(0x90, 0x00, 0x00, 0x72)},
			{Epoch: 132608, Version: fv(0x90, 0x00, 0x00, 0x73)},
			{Epoch: 222464, Version: fv(0x90, 0x00, 0x00, 0x74)},
			{Epoch: 272640, Version: fv(0x90, 0x00, 0x00, 0x75)},
		},
	},
	// Holesky and hoodi fork versions follow the same post-merge-genesis
	// shape as Holesky's published config (phase0 and bellatrix activate
	// together at genesis, since both testnets launched already merged).
	// Unlike mainnet/sepolia/gnosis, no copy of these two genesis roots
	// turned up in any reference material available while porting this
	// package; confirm against a canonical eth-clients config before
	// trusting proofs against either network in production.
	"holesky": {
		Name:                "holesky",
		GenesisValidatorsRoot: common.HexToHash("0x9143aa7c615a7f7115e2b6aac319c03529df8242ae705fba9df39b79c59fa8b1"),
		GenesisTime:         1695902400,
		SecondsPerSlot:      12,
		Spec:                MainnetSpec,
		Forks: ForkSchedule{
			{Epoch: 0, Version: fv(0x01, 0x01, 0x70, 0x00)},
			{Epoch: 0, Version: fv(0x02, 0x01, 0x70, 0x00)},
			{Epoch: 0, Version: fv(0x03, 0x01, 0x70, 0x00)},
			{Epoch: 256, Version: fv(0x04, 0x01, 0x70, 0x00)},
			{Epoch: 29696, Version: fv(0x05, 0x01, 0x70, 0x00)},
			{Epoch: 115968, Version: fv(0x06, 0x01, 0x70, 0x00)},
			{Epoch: 269568, Version: fv(0x07, 0x01, 0x70, 0x00)},
		},
	},
	"hoodi": {
		Name:                "hoodi",
		GenesisValidatorsRoot: common.HexToHash("0x212f13fc4df078b6cb7db228f1c8307566dcecf900867401a92023d7ba99cb5e"),
		GenesisTime:         1742213400,
		SecondsPerSlot:      12,
		Spec:                MainnetSpec,
		Forks: ForkSchedule{
			{Epoch: 0, Version: fv(0x10, 0x00, 0x09, 0x10)},
			{Epoch: 0, Version: fv(0x20, 0x00, 0x09, 0x10)},
			{Epoch: 0, Version: fv(0x30, 0x00, 0x09, 0x10)},
			{Epoch: 0, Version: fv(0x40, 0x00, 0x09, 0x10)},
			{Epoch: 2048, Version: fv(0x50, 0x00, 0x09, 0x10)},
			{Epoch: 60416, Version: fv(0x60, 0x00, 0x09, 0x10)},
			{Epoch: ^uint64(0), Version: fv(0x70, 0x00, 0x09, 0x10)},
		},
	},
	"gnosis": {
		Name:                "gnosis",
		GenesisValidatorsRoot: common.HexToHash("0xf5dcb5564e829aab27264b9becd5dfaa017085611224cb3036f573368dbb9d47"),
		GenesisTime:         1638993340,
		SecondsPerSlot:      5,
		Spec:                GnosisSpec,
		Forks: ForkSchedule{
			{Epoch: 0, Version: fv(0x00, 0x00, 0x00, 0x64)},
			{Epoch: 512, Version: fv(0x01, 0x00, 0x00, 0x64)},
			{Epoch: 385536, Version: fv(0x02, 0x00, 0x00, 0x64)},
			{Epoch: 648704, Version: fv(0x03, 0x00, 0x00, 0x64)},
			{Epoch: 889856, Version: fv(0x04, 0x00, 0x00, 0x64)},
			{Epoch: 1337856, Version: fv(0x05, 0x00, 0x00, 0x64)},
			{Epoch: ^uint64(0), Version: fv(0x06, 0x00, 0x00, 0x64)},
		},
	},
}

// networkAliases maps alternate spellings to their canonical network name.
var networkAliases = map[string]string{
	"xdai": "gnosis",
}

// ParseNetwork resolves a wire-visible network identifier to its
// NetworkConfig, applying known aliases (xdai -> gnosis).
func ParseNetwork(name string) (NetworkConfig, error) {
	if canonical, ok := networkAliases[name]; ok {
		name = canonical
	}
	cfg, ok := networks[name]
	if !ok {
		return NetworkConfig{}, fmt.Errorf("%w: %s", errUnsupportedNetworkValue, name)
	}
	return cfg, nil
}

var errUnsupportedNetworkValue = fmt.Errorf("consensus: unsupported network")
