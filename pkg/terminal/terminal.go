package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-delve/liner"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/go-delve/regxfer/pkg/config"
	"github.com/go-delve/regxfer/pkg/logflags"
	"github.com/go-delve/regxfer/pkg/proc"
)

const (
	historyFile                 string = ".regxfer_history"
	terminalHighlightEscapeCode string = "\033[%2dm"
	terminalResetEscapeCode     string = "\033[0m"
)

const (
	ansiBlue = 34
)

// Term represents the terminal running regxfer.
type Term struct {
	target *proc.Target
	conf   *config.Config
	prompt string
	line   *liner.State
	cmds   *Commands
	dumb   bool
	colors bool
	stdout io.Writer
	log    logflags.Logger
}

// New returns a new Term operating on target.
func New(target *proc.Target, conf *config.Config) *Term {
	dumb := strings.ToLower(os.Getenv("TERM")) == "dumb"

	var w io.Writer
	if dumb {
		w = os.Stdout
	} else {
		w = colorable.NewColorableStdout()
	}

	t := newTerm(target, conf, w)
	t.dumb = dumb
	t.colors = !dumb && isatty.IsTerminal(os.Stdout.Fd())
	t.line = liner.NewLiner()
	return t
}

func newTerm(target *proc.Target, conf *config.Config, stdout io.Writer) *Term {
	cmds := DebugCommands(target)
	if conf != nil && conf.Aliases != nil {
		cmds.Merge(conf.Aliases)
	}
	if conf == nil {
		conf = &config.Config{}
	}
	prompt := "(regxfer) "
	if target != nil {
		prompt = fmt.Sprintf("(regxfer %d) ", target.Pid)
	}
	return &Term{
		target: target,
		conf:   conf,
		prompt: prompt,
		cmds:   cmds,
		dumb:   true,
		stdout: stdout,
		log:    logflags.TerminalLogger(),
	}
}

// Close returns the terminal to its previous mode.
func (t *Term) Close() {
	if t.line != nil {
		t.line.Close()
	}
}

// Run begins running the terminal. It returns when the user exits.
func (t *Term) Run() (int, error) {
	defer t.Close()

	t.line.SetCtrlCAborts(true)
	t.line.SetCompleter(t.cmds.Complete)

	fullHistoryFile, err := config.GetConfigFilePath(historyFile)
	if err != nil {
		fmt.Printf("Unable to load history file: %v.", err)
	}

	f, err := os.Open(fullHistoryFile)
	if err != nil {
		f, err = os.Create(fullHistoryFile)
		if err != nil {
			fmt.Printf("Unable to open history file: %v. History will not be saved for this session.", err)
		}
	}

	if f != nil {
		t.line.ReadHistory(f)
		f.Close()
	}
	fmt.Fprintln(t.stdout, "Type 'help' for list of commands.")

	for {
		cmdstr, err := t.promptForInput()
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(t.stdout, "exit")
				return t.handleExit()
			}
			if err == liner.ErrPromptAborted {
				continue
			}
			return 1, fmt.Errorf("Prompt for input failed.\n")
		}

		if err := t.Call(cmdstr); err != nil {
			if _, ok := err.(ExitRequestError); ok {
				return t.handleExit()
			}
			fmt.Fprintf(os.Stderr, "Command failed: %s\n", err)
		}
	}
}

// Call executes a single command line.
func (t *Term) Call(cmdstr string) error {
	if logflags.Terminal() && cmdstr != "" {
		t.log.Debugf("command %q", cmdstr)
	}
	return t.cmds.Call(cmdstr, t)
}

func (t *Term) promptForInput() (string, error) {
	l, err := t.line.Prompt(t.prompt)
	if err != nil {
		return "", err
	}

	l = strings.TrimSuffix(l, "\n")
	if l != "" {
		t.line.AppendHistory(l)
	}

	return l, nil
}

func (t *Term) handleExit() (int, error) {
	fullHistoryFile, err := config.GetConfigFilePath(historyFile)
	if err != nil {
		fmt.Println("Error saving history file:", err)
	} else {
		if f, err := os.OpenFile(fullHistoryFile, os.O_RDWR, 0666); err == nil {
			_, err = t.line.WriteHistory(f)
			if err != nil {
				fmt.Println("readline history error:", err)
			}
			f.Close()
		}
	}
	return 0, nil
}

// Batch runs a single command against target without an interactive
// prompt, writing its output to w.
func Batch(target *proc.Target, conf *config.Config, w io.Writer, cmdstr string) error {
	return newTerm(target, conf, w).Call(cmdstr)
}
