package cmds

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"

	"github.com/orivej/e"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/go-delve/regxfer/pkg/config"
	"github.com/go-delve/regxfer/pkg/logflags"
	"github.com/go-delve/regxfer/pkg/proc"
	"github.com/go-delve/regxfer/pkg/proc/fbsdutil"
	"github.com/go-delve/regxfer/pkg/proc/linutil"
	"github.com/go-delve/regxfer/pkg/proc/native"
	"github.com/go-delve/regxfer/pkg/proc/sim"
	"github.com/go-delve/regxfer/pkg/terminal"
	"github.com/go-delve/regxfer/pkg/version"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// logDest is the file path or file descriptor where logs should go.
	logDest string

	// backend selection
	backend string
	// archName is the architecture simulated by the sim backend.
	archName string

	// allRegs makes the regs command print floating point registers.
	allRegs bool

	conf *config.Config
)

const regxferCommandLongDesc = `regxfer reads and writes the registers of a traced process.

It moves the general purpose and floating point register banks of a stopped
process between the kernel and a register cache, one whole bank per kernel
request, and can toggle qtrace execution tracing on kernels that provide it.`

// New returns an initialized command tree.
func New() *cobra.Command {
	conf = config.LoadConfig()

	rootCommand := &cobra.Command{
		Use:           "regxfer",
		Short:         "regxfer moves registers between a traced process and a register cache.",
		Long:          regxferCommandLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logflags.Setup(log, logOutput, logDest)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logflags.Close()
		},
	}

	addFlags(rootCommand.PersistentFlags())

	attachCommand := &cobra.Command{
		Use:   "attach pid",
		Short: "Attach to a running process and start an interactive session.",
		Long: `Attach to an already running process and start an interactive session.

The process is stopped while the session lasts and detached when the session
ends. Type 'help' in the session for the list of commands.`,
		Args: cobra.ExactArgs(1),
		RunE: attachCmd,
	}
	rootCommand.AddCommand(attachCommand)

	regsCommand := &cobra.Command{
		Use:   "regs pid [register]",
		Short: "Print the registers of a process.",
		Long: `Attach to a process, print its registers and detach.

If a register name is given only that register is read.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: regsCmd,
	}
	regsCommand.Flags().BoolVarP(&allRegs, "all", "a", false, "Also print the floating point registers.")
	rootCommand.AddCommand(regsCommand)

	setCommand := &cobra.Command{
		Use:   "set pid register value",
		Short: "Change the value of a register of a process.",
		Args:  cobra.ExactArgs(3),
		RunE:  setCmd,
	}
	rootCommand.AddCommand(setCommand)

	qtraceCommand := &cobra.Command{
		Use:   "qtrace",
		Short: "Enable or disable qtrace execution tracing of a process.",
		Long: `Enable or disable qtrace execution tracing of a process.

Only backends whose kernel supports qtrace accept these commands.`,
	}
	qtraceCommand.AddCommand(&cobra.Command{
		Use:   "start pid",
		Short: "Start recording a qtrace of the process.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return qtraceCmd(cmd, args, true)
		},
	})
	qtraceCommand.AddCommand(&cobra.Command{
		Use:   "stop pid",
		Short: "Stop recording a qtrace of the process.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return qtraceCmd(cmd, args, false)
		},
	})
	rootCommand.AddCommand(qtraceCommand)

	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "regxfer\n%s\n", version.RegxferVersion)
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", version.BuildInfo())
			}
		},
	}
	versionCommand.Flags().BoolP("verbose", "v", false, "print verbose version info")
	rootCommand.AddCommand(versionCommand)

	rootCommand.AddCommand(&cobra.Command{
		Use:   "backend",
		Short: "Help about the --backend flag.",
		Long: `The --backend flag specifies which backend should be used, possible values
are:

	native		Native ptrace backend (linux/amd64 only).
	sim		In-memory simulated kernel, see --arch.

If --backend is not given the backend key of the configuration file is used,
and native if that is not set either.
`,
	})

	rootCommand.AddCommand(&cobra.Command{
		Use:   "log",
		Short: "Help about logging flags.",
		Long: `Logging can be enabled by specifying the --log flag and using the
--log-output flag to select which components should produce logs.

The argument of --log-output must be a comma separated list of component
names selected from this list:

	regs		Log every register bank transfer (default)
	ptrace		Log every kernel request issued by the backend
	terminal	Log the commands typed in interactive sessions

Additionally --log-dest can be used to specify where the logs should be
written.
If the argument is a number it will be interpreted as a file descriptor,
otherwise as a file path.
`,
	})

	return rootCommand
}

func addFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&log, "log", "", false, "Enable logging.")
	fs.StringVarP(&logOutput, "log-output", "", "", `Comma separated list of components that should produce debug output (see 'regxfer help log')`)
	fs.StringVarP(&logDest, "log-dest", "", "", "Writes logs to the specified file or file descriptor (see 'regxfer help log').")
	fs.StringVar(&backend, "backend", "", `Backend selection (see 'regxfer help backend').`)
	fs.StringVar(&archName, "arch", "", "Architecture simulated by the sim backend: amd64, mips64 or mips64el.")
}

// archByName returns the register layout called name.
func archByName(name string) (*proc.Arch, error) {
	switch name {
	case "", "amd64":
		return linutil.AMD64Arch(), nil
	case "mips64":
		return fbsdutil.MIPS64Arch(binary.BigEndian), nil
	case "mips64el":
		return fbsdutil.MIPS64Arch(binary.LittleEndian), nil
	}
	return nil, fmt.Errorf("unknown architecture %q", name)
}

func selectedBackend() string {
	switch {
	case backend != "":
		return backend
	case conf != nil && conf.Backend != "":
		return conf.Backend
	}
	return "native"
}

func selectedArch() string {
	if archName == "" && conf != nil {
		return conf.Arch
	}
	return archName
}

// openTarget attaches to pid with the selected backend. The returned
// function detaches from it.
func openTarget(pid int) (*proc.Target, func(), error) {
	switch b := selectedBackend(); b {
	case "native":
		io, err := native.New()
		if err != nil {
			return nil, nil, err
		}
		if err := io.Attach(pid); err != nil {
			io.Close()
			return nil, nil, err
		}
		detach := func() {
			e.Print(io.Detach(pid))
			io.Close()
		}
		tgt, err := proc.NewTarget(pid, io.Arch(), io)
		if err != nil {
			detach()
			return nil, nil, err
		}
		return tgt, detach, nil
	case "sim":
		arch, err := archByName(selectedArch())
		if err != nil {
			return nil, nil, err
		}
		s := sim.New(arch)
		s.AddProcess(pid)
		tgt, err := proc.NewTarget(pid, arch, s)
		if err != nil {
			return nil, nil, err
		}
		return tgt, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", b)
	}
}

func parsePid(s string) (int, error) {
	pid, err := strconv.Atoi(s)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid: %s", s)
	}
	return pid, nil
}

func attachCmd(cmd *cobra.Command, args []string) error {
	pid, err := parsePid(args[0])
	if err != nil {
		return err
	}
	tgt, detach, err := openTarget(pid)
	if err != nil {
		return err
	}
	defer detach()
	_, err = terminal.New(tgt, conf).Run()
	return err
}

func regsCmd(cmd *cobra.Command, args []string) error {
	pid, err := parsePid(args[0])
	if err != nil {
		return err
	}
	tgt, detach, err := openTarget(pid)
	if err != nil {
		return err
	}
	defer detach()
	cmdstr := "regs"
	if allRegs {
		cmdstr += " -a"
	}
	if len(args) > 1 {
		cmdstr += " " + args[1]
	}
	return terminal.Batch(tgt, conf, cmd.OutOrStdout(), cmdstr)
}

func setCmd(cmd *cobra.Command, args []string) error {
	pid, err := parsePid(args[0])
	if err != nil {
		return err
	}
	tgt, detach, err := openTarget(pid)
	if err != nil {
		return err
	}
	defer detach()
	return terminal.Batch(tgt, conf, cmd.OutOrStdout(), fmt.Sprintf("set %s %s", args[1], args[2]))
}

func qtraceCmd(cmd *cobra.Command, args []string, enable bool) error {
	pid, err := parsePid(args[0])
	if err != nil {
		return err
	}
	tgt, detach, err := openTarget(pid)
	if err != nil {
		return err
	}
	defer detach()
	if err := tgt.Qtrace(enable); err != nil {
		if errors.Is(err, proc.ErrQtraceNotSupported) {
			return fmt.Errorf("%s backend: %w", selectedBackend(), err)
		}
		return err
	}
	state := "disabled"
	if enable {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "qtrace %s for process %d\n", state, pid)
	return nil
}
