// Command atvmctl is a small reference front end over the atvm package:
// it disassembles creation bytes, runs a machine through simulated
// rounds against an in-memory host, and inspects persisted state bytes.
// None of this is part of the consensus-critical core; it exists to give
// the core something to be exercised by outside of tests.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"atvm"
	"atvm/internal/fakehost"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "atvmctl",
		Short: "Inspect and run automated-transaction bytecode",
	}
	root.AddCommand(disasmCmd(), runCmd(), inspectCmd())
	return root
}

func newLogger(verbose bool) slogLogger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := newHandler(&slog.HandlerOptions{Level: level}, os.Stderr)
	return slogLogger{logger: slog.New(h)}
}

func disasmCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "disasm",
		Short: "Disassemble an AT's creation bytes",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			m, err := atvm.NewFromCreationBytes(raw, 0)
			if err != nil {
				return err
			}
			fmt.Print(atvm.Disassemble(m.Code, m.Version))
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "path to creation bytes")
	cmd.MarkFlagRequired("file")
	return cmd
}

func runCmd() *cobra.Command {
	var path string
	var rounds int
	var balance uint64
	var feePerStep uint64
	var maxSteps uint32
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an AT's creation bytes through simulated rounds",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			m, err := atvm.NewFromCreationBytes(raw, balance)
			if err != nil {
				return err
			}

			log := newLogger(verbose)
			host := fakehost.New(0, feePerStep, maxSteps)

			for i := 0; i < rounds; i++ {
				in := atvm.RoundInputs{
					CurrentBlockHeight: host.CurrentBlockHeight(),
					CurrentBalance:     m.CurrentBalance,
					FeePerStep:         feePerStep,
					MaxStepsPerRound:   maxSteps,
					OpcodeSteps:        host.OpcodeSteps,
				}
				if err := atvm.Execute(m, host, log, in); err != nil {
					return err
				}
				fmt.Printf("round %d: pc=%04x balance=%d sleeping=%v stopped=%v frozen=%v finished=%v fatal=%v\n",
					i, m.PC, m.CurrentBalance, m.IsSleeping, m.IsStopped, m.IsFrozen, m.IsFinished, m.HadFatalError)
				if m.IsFinished {
					break
				}
				host.AdvanceBlock()
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "path to creation bytes")
	cmd.Flags().IntVar(&rounds, "rounds", 10, "number of rounds to simulate")
	cmd.Flags().Uint64Var(&balance, "balance", 0, "starting balance")
	cmd.Flags().Uint64Var(&feePerStep, "fee-per-step", 1, "fee charged per step")
	cmd.Flags().Uint32Var(&maxSteps, "max-steps", 1000, "max steps per round")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.MarkFlagRequired("file")
	return cmd
}

func inspectCmd() *cobra.Command {
	var creationPath, statePath string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Deserialize persisted state bytes and print the machine's fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			creationRaw, err := os.ReadFile(creationPath)
			if err != nil {
				return err
			}
			template, err := atvm.NewFromCreationBytes(creationRaw, 0)
			if err != nil {
				return err
			}

			stateRaw, err := os.ReadFile(statePath)
			if err != nil {
				return err
			}
			m, err := atvm.Restore(template.Version, template.Code, uint32(len(template.Data)), uint32(len(template.CallStack)), uint32(len(template.UserStack)), stateRaw)
			if err != nil {
				return err
			}

			fmt.Printf("version=%d pc=%04x on_stop=%04x balance=%d prev_balance=%d\n", m.Version, m.PC, m.OnStopAddress, m.CurrentBalance, m.PreviousBalance)
			fmt.Printf("sleeping=%v stopped=%v frozen=%v finished=%v fatal=%v\n", m.IsSleeping, m.IsStopped, m.IsFrozen, m.IsFinished, m.HadFatalError)
			fmt.Printf("A=%v B=%v\n", m.A, m.B)
			return nil
		},
	}
	cmd.Flags().StringVar(&creationPath, "creation", "", "path to the AT's original creation bytes")
	cmd.Flags().StringVar(&statePath, "state", "", "path to persisted state bytes")
	cmd.MarkFlagRequired("creation")
	cmd.MarkFlagRequired("state")
	return cmd
}
