// Command oombak is a line-based front end over an engine.Engine: it
// reads one command per line from stdin, submits it to a
// dispatch.Dispatcher, and renders whatever responses come back. An
// optional -http flag also exposes the same dispatcher over
// transport/httpsim.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/kr/text"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/oombak/dispatch"
	"github.com/sarchlab/oombak/engine"
	"github.com/sarchlab/oombak/internal/journal"
	"github.com/sarchlab/oombak/message"
	"github.com/sarchlab/oombak/transport/httpsim"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("unrecovered panic", "value", r)
			atexit.Exit(1)
		}
	}()

	parserCmd := flag.String("parser-cmd", "oombak-elaborate", "external HDL elaboration command")
	freqHz := flag.Float64("freq", 1e9, "DUT clock frequency in Hz")
	httpAddr := flag.String("http", "", "address to also serve the HTTP transport on, e.g. :8080 (disabled if empty)")
	journalDriver := flag.String("journal-driver", "sqlite3", "journal database driver: sqlite3 or mysql")
	journalDSN := flag.String("journal-dsn", "journal.db", "journal database DSN")
	flag.Parse()

	eng := engine.NewBuilder().
		WithParser(newExecParser(*parserCmd)).
		WithFreq(sim.Freq(*freqHz)).
		Build()

	// atexit, not a Go defer: every exit path below goes through
	// atexit.Exit, which runs registered functions then calls os.Exit
	// directly, skipping ordinary defers. Registered as engine Close,
	// then journal Close, then Terminate, so that with atexit running
	// its functions last-registered-first, Terminate (stop producing
	// journal entries) runs before journal Close (drain and close),
	// which runs before engine Close.
	atexit.Register(func() { eng.Close() })

	var j *journal.Journal
	if opened, err := journal.Open(journal.Config{Driver: *journalDriver, DSN: *journalDSN}); err != nil {
		slog.Warn("journal disabled", "error", err)
	} else {
		j = opened
		atexit.Register(func() { j.Close() })
	}

	d := dispatch.New(eng)
	atexit.Register(func() { d.Terminate() })
	if j != nil {
		d.SetJournal(j)
	}

	d.Register(newCLIListener())

	if *httpAddr != "" {
		server := httpsim.NewServer(d)
		go func() {
			if err := http.ListenAndServe(*httpAddr, server); err != nil {
				slog.Error("http transport stopped", "error", err)
			}
		}()
	}

	runREPL(d)
	atexit.Exit(0)
}

func runREPL(d *dispatch.Dispatcher) {
	fmt.Println(helpText())
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		cmd, err := parseCommand(line)
		if err != nil {
			fmt.Printf("error:\n%s\n", text.Indent(err.Error(), "    "))
			continue
		}

		switch cmd.kind {
		case cmdNoop:
		case cmdHelp:
			fmt.Print(helpText())
		case cmdStatus:
			fmt.Print(renderStatus())
		case cmdQuit:
			atexit.Exit(0)
		default:
			d.Submit(requestPayload(cmd))
		}
	}
}

func requestPayload(cmd command) message.RequestPayload {
	switch cmd.kind {
	case cmdRun:
		return message.RequestPayload{Kind: message.KindRun, RunDuration: cmd.runDuration}
	case cmdLoad:
		return message.RequestPayload{Kind: message.KindLoad, LoadPath: cmd.loadPath}
	case cmdSet:
		return message.RequestPayload{Kind: message.KindSetSignal, SignalName: cmd.signalName, SetValue: cmd.setValue}
	case cmdSetPeriodic:
		return message.RequestPayload{
			Kind:              message.KindSetPeriodic,
			SignalName:        cmd.signalName,
			PeriodicPeriod:    cmd.periodicPeriod,
			PeriodicLowValue:  cmd.periodicLowValue,
			PeriodicHighValue: cmd.periodicHighValue,
		}
	case cmdProbe:
		return message.RequestPayload{Kind: message.KindModifyProbedPoints, ProbePointsToAdd: []string{cmd.probePath}}
	case cmdUnprobe:
		return message.RequestPayload{Kind: message.KindModifyProbedPoints, ProbePointsToRemove: []string{cmd.probePath}}
	default:
		return message.RequestPayload{Kind: message.KindGetSimulationResult}
	}
}
