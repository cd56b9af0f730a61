// Command safelens-verify is a local, offline test harness for the two
// SafeLens verification cores: the beacon light-client consensus proof
// verifier and the EVM simulation replay verifier. It is not part of the
// verifier cores' public contract -- production callers embed the
// consensus and replay packages directly -- but it exercises the exact
// same entry points end to end against a JSON evidence package on disk.
//
// Usage:
//
//	safelens-verify consensus <path-to-consensus-input.json>
//	safelens-verify replay <path-to-replay-input.json>
//
// Either subcommand will read its input from the SAFELENS_CONSENSUS_INPUT
// or SAFELENS_REPLAY_INPUT environment variable if no path is given.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Th0rgal/SafeLens/consensus"
	"github.com/Th0rgal/SafeLens/internal/xlog"
	"github.com/Th0rgal/SafeLens/replay"
)

var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	logger := xlog.Default()

	app := &cli.App{
		Name:    "safelens-verify",
		Usage:   "run the consensus and simulation replay verification cores against a JSON evidence package",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Commands: []*cli.Command{
			{
				Name:      "consensus",
				Usage:     "verify a beacon light-client consensus proof",
				ArgsUsage: "[input.json]",
				Action: func(c *cli.Context) error {
					return runConsensus(c, logger.Module("consensus"))
				},
			},
			{
				Name:      "replay",
				Usage:     "verify a simulation replay evidence package",
				ArgsUsage: "[input.json]",
				Action: func(c *cli.Context) error {
					return runReplay(c, logger.Module("replay"))
				},
			},
		},
	}

	if err := app.Run(args); err != nil {
		logger.Error("run failed", "error", err)
		return 1
	}
	return 0
}

// readInput resolves the evidence package JSON from a positional file
// argument, falling back to the given environment variable.
func readInput(c *cli.Context, envVar string) ([]byte, error) {
	if path := c.Args().First(); path != "" {
		return os.ReadFile(path)
	}
	if path := os.Getenv(envVar); path != "" {
		return os.ReadFile(path)
	}
	return nil, fmt.Errorf("no input provided: pass a file path or set %s", envVar)
}

func runConsensus(c *cli.Context, logger *xlog.Logger) error {
	raw, err := readInput(c, "SAFELENS_CONSENSUS_INPUT")
	if err != nil {
		return err
	}

	var input consensus.ConsensusProofInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return fmt.Errorf("parse consensus input: %w", err)
	}

	result := consensus.VerifyConsensusProof(input)
	logger.Info("consensus verification complete",
		slog.Bool("valid", result.Valid),
		slog.String("errorCode", string(result.ErrorCode)),
		slog.Int("syncCommitteeParticipants", result.SyncCommitteeParticipants),
	)

	return printJSON(result)
}

func runReplay(c *cli.Context, logger *xlog.Logger) error {
	raw, err := readInput(c, "SAFELENS_REPLAY_INPUT")
	if err != nil {
		return err
	}

	input, err := replay.ParseSimulationReplayInput(raw)
	if err != nil {
		return fmt.Errorf("parse replay input: %w", err)
	}

	result := replay.VerifySimulationReplay(*input)
	logger.Info("replay verification complete",
		slog.Bool("executed", result.Executed),
		slog.Bool("success", result.Success),
		slog.String("reason", string(result.Reason)),
	)

	return printJSON(result)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
