// Package terminal implements functions for responding to user
// input and dispatching to the register transfer commands.
package terminal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cosiner/argv"
	"github.com/derekparker/trie"

	"github.com/go-delve/regxfer/pkg/logflags"
	"github.com/go-delve/regxfer/pkg/proc"
)

type cmdfunc func(t *Term, args string) error

type command struct {
	aliases        []string
	builtinAliases []string
	helpMsg        string
	cmdFn          cmdfunc
}

// Returns true if the command string matches one of the aliases for this command
func (c command) match(cmdstr string) bool {
	for _, v := range c.aliases {
		if v == cmdstr {
			return true
		}
	}
	return false
}

// Commands represents the commands of the register terminal.
type Commands struct {
	cmds  []command
	names *trie.Trie
}

// byFirstAlias will sort by the first
// alias of a command.
type byFirstAlias []command

func (a byFirstAlias) Len() int           { return len(a) }
func (a byFirstAlias) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byFirstAlias) Less(i, j int) bool { return a[i].aliases[0] < a[j].aliases[0] }

// DebugCommands returns a Commands struct with the default commands
// defined. The qtrace command is only defined if target supports it.
func DebugCommands(target *proc.Target) *Commands {
	c := &Commands{}

	c.cmds = []command{
		{aliases: []string{"help", "h"}, cmdFn: c.help, helpMsg: `Prints the help message.

	help [command]

Type "help" followed by the name of a command for more information about it.`},
		{aliases: []string{"regs"}, cmdFn: regs, helpMsg: `Print contents of CPU registers.

	regs [-a] [register]

Argument -a shows more registers. Here "more" refers to the floating point
registers, which are also shown if show-float-registers is set in the
configuration. If a register name is given only that register is read from
the process and printed. On amd64 the name may also be a partial view of an
integer register (al, ax, eax...).`},
		{aliases: []string{"set"}, cmdFn: setRegister, helpMsg: `Changes the value of a register.

	set <register> <value>

The value is a decimal, hexadecimal (0x), octal (0o) or binary (0b) number
and may be as wide as the register. Only the register bank containing the
register is rewritten, every other register keeps its value.`},
		{aliases: []string{"config"}, cmdFn: configureCmd, helpMsg: `Changes configuration parameters.

	config -list

Show all configuration parameters.

	config -save

Saves the configuration file to disk, overwriting the current configuration file.

	config <parameter> <value>

Changes the value of a configuration parameter.

	config alias <command> <alias>
	config alias <alias>

Defines <alias> as an alias to <command> or removes an alias.`},
		{aliases: []string{"exit", "quit", "q"}, cmdFn: exitCommand, helpMsg: `Exit the terminal, detaching from the process.

	exit`},
	}

	if target != nil && target.QtraceSupported() {
		c.cmds = append(c.cmds, command{aliases: []string{"qtrace"}, cmdFn: qtrace, helpMsg: `Enables or disables qtrace for the process.

	qtrace
	qtrace stop

Without arguments starts recording a qtrace execution trace of the process,
with "stop" stops it.`})
	}

	sort.Sort(byFirstAlias(c.cmds))
	c.rebuildNames()
	return c
}

func (c *Commands) rebuildNames() {
	c.names = trie.New()
	for _, cmd := range c.cmds {
		for _, alias := range cmd.aliases {
			c.names.Add(alias, nil)
		}
	}
}

// Find will look up the command function for the given command input.
// If it cannot find the command it will default to noCmdAvailable().
func (c *Commands) Find(cmdstr string) cmdfunc {
	if cmdstr == "" {
		return nullCommand
	}

	for _, v := range c.cmds {
		if v.match(cmdstr) {
			return v.cmdFn
		}
	}

	return noCmdAvailable
}

// Complete returns the command names starting with prefix.
func (c *Commands) Complete(prefix string) []string {
	r := c.names.PrefixSearch(strings.ToLower(prefix))
	sort.Strings(r)
	return r
}

// Call takes a command to execute.
func (c *Commands) Call(cmdstr string, t *Term) error {
	vals := strings.SplitN(strings.TrimSpace(cmdstr), " ", 2)
	cmdname := vals[0]
	var args string
	if len(vals) > 1 {
		args = strings.TrimSpace(vals[1])
	}
	return c.Find(cmdname)(t, args)
}

// Merge takes aliases defined in the config struct and merges them with the default aliases.
func (c *Commands) Merge(allAliases map[string][]string) {
	for i := range c.cmds {
		if c.cmds[i].builtinAliases != nil {
			c.cmds[i].aliases = append(c.cmds[i].aliases[:0], c.cmds[i].builtinAliases...)
		}
	}
	for i := range c.cmds {
		if aliases, ok := allAliases[c.cmds[i].aliases[0]]; ok {
			if c.cmds[i].builtinAliases == nil {
				c.cmds[i].builtinAliases = make([]string, len(c.cmds[i].aliases))
				copy(c.cmds[i].builtinAliases, c.cmds[i].aliases)
			}
			c.cmds[i].aliases = append(c.cmds[i].aliases, aliases...)
		}
	}
	c.rebuildNames()
}

var errNoCmd = errors.New("command not available")

func noCmdAvailable(t *Term, args string) error {
	return errNoCmd
}

func nullCommand(t *Term, args string) error {
	return nil
}

func (c *Commands) help(t *Term, args string) error {
	if args != "" {
		for _, cmd := range c.cmds {
			for _, alias := range cmd.aliases {
				if alias == args {
					fmt.Fprintln(t.stdout, cmd.helpMsg)
					return nil
				}
			}
		}
		return errNoCmd
	}

	fmt.Fprintln(t.stdout, "The following commands are available:")
	w := new(tabwriter.Writer)
	w.Init(t.stdout, 0, 8, 0, '-', 0)
	for _, cmd := range c.cmds {
		h := cmd.helpMsg
		if idx := strings.Index(h, "\n"); idx >= 0 {
			h = h[:idx]
		}
		if len(cmd.aliases) > 1 {
			fmt.Fprintf(w, "    %s (alias: %s) \t %s\n", cmd.aliases[0], strings.Join(cmd.aliases[1:], " | "), h)
		} else {
			fmt.Fprintf(w, "    %s \t %s\n", cmd.aliases[0], h)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(t.stdout)
	fmt.Fprintln(t.stdout, "Type help followed by a command for full documentation.")
	return nil
}

// ExitRequestError is returned by the exit command.
type ExitRequestError struct{}

func (ere ExitRequestError) Error() string {
	return ""
}

func exitCommand(t *Term, args string) error {
	return ExitRequestError{}
}

// splitArgs splits args into words, honoring quotes.
func splitArgs(args string) ([]string, error) {
	if strings.TrimSpace(args) == "" {
		return nil, nil
	}
	v, err := argv.Argv(args,
		func(s string) (string, error) {
			return "", fmt.Errorf("Backtick not supported in '%s'", s)
		},
		nil)
	if err != nil {
		return nil, err
	}
	if len(v) != 1 {
		return nil, fmt.Errorf("illegal command line '%s'", args)
	}
	return v[0], nil
}

func regs(t *Term, args string) error {
	if t.target == nil {
		return proc.ErrNoTarget
	}
	words, err := splitArgs(args)
	if err != nil {
		return err
	}
	includeFp := t.conf.ShowFloatRegisters
	var name string
	for _, w := range words {
		switch {
		case w == "-a":
			includeFp = true
		case name == "" && !strings.HasPrefix(w, "-"):
			name = w
		default:
			return fmt.Errorf("wrong arguments to regs: %q", args)
		}
	}

	if name != "" {
		regnum, ok := t.target.Arch().RegnumByName(name)
		if !ok {
			// partial views such as eax are read through the register
			// containing them
			reg, err := t.target.ReadSubRegister(name)
			if errors.Is(err, proc.ErrUnknownRegister) {
				return fmt.Errorf("unknown register %q", name)
			}
			if err != nil {
				return err
			}
			t.printRegisters([]proc.Register{reg})
			return nil
		}
		if _, err := t.target.ReadRegister(regnum); err != nil {
			return err
		}
		t.printRegisters([]proc.Register{t.target.Cache().Register(regnum)})
		return nil
	}

	regs, err := t.target.Registers(includeFp)
	if err != nil {
		return err
	}
	t.printRegisters(regs)
	return nil
}

func (t *Term) regnum(name string) (int, error) {
	regnum, ok := t.target.Arch().RegnumByName(name)
	if !ok {
		return 0, fmt.Errorf("unknown register %q", name)
	}
	return regnum, nil
}

func (t *Term) printRegisters(regs []proc.Register) {
	maxlen := 0
	for _, reg := range regs {
		if n := len(reg.Name); n > maxlen {
			maxlen = n
		}
	}
	for _, reg := range regs {
		name := fmt.Sprintf("%*s", maxlen, reg.Name)
		if t.colors {
			name = fmt.Sprintf(terminalHighlightEscapeCode, ansiBlue) + name + terminalResetEscapeCode
		}
		fmt.Fprintf(t.stdout, "%s = %s\n", name, reg.Value)
	}
}

func setRegister(t *Term, args string) error {
	if t.target == nil {
		return proc.ErrNoTarget
	}
	words, err := splitArgs(args)
	if err != nil {
		return err
	}
	if len(words) != 2 {
		return fmt.Errorf("wrong number of arguments to set: expected register and value")
	}
	regnum, err := t.regnum(words[0])
	if err != nil {
		return err
	}
	value, err := parseRegisterValue(t.target.Arch(), regnum, words[1])
	if err != nil {
		return err
	}
	if err := t.target.SetRegister(regnum, value); err != nil {
		return err
	}
	if logflags.Terminal() {
		t.log.Debugf("set %s to %s", words[0], words[1])
	}
	return nil
}

// parseRegisterValue converts s to the in-memory representation of
// register regnum.
func parseRegisterValue(arch *proc.Arch, regnum int, s string) ([]byte, error) {
	size := arch.RegisterSize(regnum)
	if n, err := strconv.ParseUint(s, 0, 64); err == nil {
		if size < 8 && n>>(8*uint(size)) != 0 {
			return nil, fmt.Errorf("value %s too large for register %s", s, arch.RegisterName(regnum))
		}
		buf := make([]byte, 8)
		arch.ByteOrder.PutUint64(buf, n)
		if size < 8 {
			if arch.ByteOrder == binary.BigEndian {
				buf = buf[8-size:]
			} else {
				buf = buf[:size]
			}
		}
		return buf, nil
	}
	v, ok := new(big.Int).SetString(s, 0)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid value %q", s)
	}
	be := v.Bytes()
	if len(be) > size {
		return nil, fmt.Errorf("value %s too large for register %s", s, arch.RegisterName(regnum))
	}
	buf := make([]byte, size)
	copy(buf[size-len(be):], be)
	if arch.ByteOrder != binary.BigEndian {
		for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
			buf[i], buf[j] = buf[j], buf[i]
		}
	}
	return buf, nil
}

func qtrace(t *Term, args string) error {
	switch args {
	case "":
		if err := t.target.Qtrace(true); err != nil {
			return err
		}
		fmt.Fprintf(t.stdout, "qtrace enabled for process %d\n", t.target.Pid)
	case "stop":
		if err := t.target.Qtrace(false); err != nil {
			return err
		}
		fmt.Fprintf(t.stdout, "qtrace disabled for process %d\n", t.target.Pid)
	default:
		return fmt.Errorf("wrong argument to qtrace: %q", args)
	}
	return nil
}
