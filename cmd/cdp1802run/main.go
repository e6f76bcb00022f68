// Command cdp1802run drives a cdp1802.CPU against a flat-memory host
// loaded from a binary image: load, run N steps (or a single step),
// print state. It is a plain textual front end, not an interactive
// front-panel mode machine.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/dcueva/elfuino1802/cdp1802"
	"github.com/dcueva/elfuino1802/cdp1802/memhost"
)

const defaultMemSize = 1 << 16 // 64KiB; the core always emits 16-bit addresses

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cdp1802run",
		Short: "Load and run a CDP1802 binary image",
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newStepCmd())
	root.AddCommand(newDisasmCmd())

	return root
}

// loadCPU loads image into a fresh memhost.Host, wires it to a new CPU,
// resets it, and sets the initial program counter. Shared by run and
// step so both commands start from identical ground.
func loadCPU(image string, memSize int, start uint16, logging bool) (*cdp1802.CPU, error) {
	host := memhost.New(memSize)
	if err := host.LoadFile(image, 0); err != nil {
		return nil, err
	}

	cpu := cdp1802.New(host)
	if logging {
		cpu.Logger = log.New(os.Stdout, "", 0)
	}
	cpu.Reset()
	cpu.R[cpu.P] = start

	return cpu, nil
}

func newRunCmd() *cobra.Command {
	var (
		start   uint16
		steps   int
		logging bool
		memSize int
	)

	cmd := &cobra.Command{
		Use:   "run [image]",
		Short: "Load an image and execute a fixed number of steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cpu, err := loadCPU(args[0], memSize, start, logging)
			if err != nil {
				return err
			}

			cpu.Run(steps)

			fmt.Println(cpu.DebugString())
			return nil
		},
	}

	cmd.Flags().Uint16Var(&start, "start", 0, "initial program counter")
	cmd.Flags().IntVar(&steps, "steps", 1, "number of instructions to execute")
	cmd.Flags().BoolVar(&logging, "log", false, "log every executed instruction")
	cmd.Flags().IntVar(&memSize, "mem", defaultMemSize, "host memory size in bytes (power of two)")

	return cmd
}

func newStepCmd() *cobra.Command {
	var (
		start   uint16
		logging bool
		memSize int
	)

	cmd := &cobra.Command{
		Use:   "step [image]",
		Short: "Load an image and execute exactly one instruction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cpu, err := loadCPU(args[0], memSize, start, logging)
			if err != nil {
				return err
			}

			cycles := cpu.Step()

			fmt.Printf("executed %s, %d cycles\n", cpu.OpDiss, cycles)
			fmt.Println(cpu.DebugString())
			return nil
		},
	}

	cmd.Flags().Uint16Var(&start, "start", 0, "initial program counter")
	cmd.Flags().BoolVar(&logging, "log", false, "log the executed instruction")
	cmd.Flags().IntVar(&memSize, "mem", defaultMemSize, "host memory size in bytes (power of two)")

	return cmd
}

func newDisasmCmd() *cobra.Command {
	var (
		start, end uint16
		memSize    int
	)

	cmd := &cobra.Command{
		Use:   "disasm [image]",
		Short: "Disassemble an image over an address range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := memhost.New(memSize)
			if err := host.LoadFile(args[0], 0); err != nil {
				return err
			}

			lines := cdp1802.Disassemble(host, start, end)
			for addr := uint32(start); addr <= uint32(end); addr++ {
				if line, ok := lines[uint16(addr)]; ok {
					fmt.Println(line)
				}
			}
			return nil
		},
	}

	cmd.Flags().Uint16Var(&start, "start", 0, "start address")
	cmd.Flags().Uint16Var(&end, "end", 0x00FF, "end address (inclusive)")
	cmd.Flags().IntVar(&memSize, "mem", defaultMemSize, "host memory size in bytes (power of two)")

	return cmd
}
