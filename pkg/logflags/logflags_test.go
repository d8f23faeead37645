package logflags

import (
	"bytes"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestMakeLogger_usingLoggerFactory(t *testing.T) {
	if loggerFactory != nil {
		t.Fatalf("expected loggerFactory to be nil; but was <%v>", loggerFactory)
	}
	defer func() {
		loggerFactory = nil
	}()
	if logOut != nil {
		t.Fatalf("expected logOut to be nil; but was <%v>", logOut)
	}
	logOut = &bufferWriter{}
	defer func() {
		logOut = nil
	}()

	expectedLogger := &logrusLogger{}
	SetLoggerFactory(func(level logrus.Level, fields Fields, out io.Writer) Logger {
		if level != logrus.DebugLevel {
			t.Fatalf("expected level to be <%v>; but was <%v>", logrus.DebugLevel, level)
		}
		if len(fields) != 1 || fields["layer"] != "regs" {
			t.Fatalf("expected fields to be {'layer':'regs'}; but was <%v>", fields)
		}
		if out != logOut {
			t.Fatalf("expected out to be <%v>; but was <%v>", logOut, out)
		}
		return expectedLogger
	})

	actual := makeLogger(logrus.DebugLevel, Fields{"layer": "regs"})
	if actual != expectedLogger {
		t.Fatalf("expected actual to <%v>; but was <%v>", expectedLogger, actual)
	}
}

func TestMakeFlaggableLogger_withFlagFalse(t *testing.T) {
	actual := makeFlaggableLogger(false, Fields{"foo": "bar"})
	actualEntry, expectedType := actual.(*logrusLogger)
	if !expectedType {
		t.Fatalf("expected actual to be of type <%v>; but was <%v>", reflect.TypeOf((*logrus.Entry)(nil)), reflect.TypeOf(actualEntry))
	}
	if actualEntry.Entry.Logger.Level != logrus.ErrorLevel {
		t.Fatalf("expected actualEntry.Entry.Logger.Level to be <%v>; but was <%v>", logrus.ErrorLevel, actualEntry.Logger.Level)
	}
	if len(actualEntry.Entry.Data) != 1 || actualEntry.Data["foo"] != "bar" {
		t.Fatalf("expected actualEntry.Entry.Data to be {'foo':'bar'}; but was <%v>", actualEntry.Data)
	}
}

func TestMakeFlaggableLogger_withFlagTrue(t *testing.T) {
	actual := makeFlaggableLogger(true, Fields{"foo": "bar"})
	actualEntry, expectedType := actual.(*logrusLogger)
	if !expectedType {
		t.Fatalf("expected actual to be of type <%v>; but was <%v>", reflect.TypeOf((*logrus.Entry)(nil)), reflect.TypeOf(actualEntry))
	}
	if actualEntry.Entry.Logger.Level != logrus.DebugLevel {
		t.Fatalf("expected actualEntry.Entry.Logger.Level to be <%v>; but was <%v>", logrus.DebugLevel, actualEntry.Logger.Level)
	}
	if actualEntry.Entry.Logger.Formatter != textFormatterInstance {
		t.Fatalf("expected the default formatter; but was <%v>", actualEntry.Logger.Formatter)
	}
}

func TestSetup(t *testing.T) {
	defer func() {
		regs, ptrace, terminal = false, false, false
	}()

	if err := Setup(false, "regs", ""); err != errLogstrWithoutLog {
		t.Fatalf("expected errLogstrWithoutLog; got %v", err)
	}
	if Regs() || Ptrace() || Terminal() {
		t.Fatal("no component should be enabled without --log")
	}

	if err := Setup(true, "", ""); err != nil {
		t.Fatal(err)
	}
	if !Regs() || Ptrace() {
		t.Fatalf("expected only regs to be enabled by default: regs=%v ptrace=%v", Regs(), Ptrace())
	}

	if err := Setup(true, "ptrace,terminal,bogus", ""); err != nil {
		t.Fatal(err)
	}
	if !Ptrace() || !Terminal() {
		t.Fatal("expected ptrace and terminal to be enabled")
	}
}

func TestTextFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.DebugLevel,
		Message: "fetch",
		Data:    logrus.Fields{"layer": "regs", "pid": 42, "bank": "general purpose"},
	}
	out, err := textFormatterInstance.Format(entry)
	if err != nil {
		t.Fatal(err)
	}
	const expected = `2020-01-02T03:04:05Z debug bank="general purpose",layer=regs,pid=42 fetch`
	if got := strings.TrimSpace(string(out)); got != expected {
		t.Fatalf("expected %q; got %q", expected, got)
	}
}

type bufferWriter struct {
	bytes.Buffer
}

func (bw bufferWriter) Close() error {
	return nil
}
