package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/kr/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sarchlab/oombak/message"
)

var titleCaser = cases.Title(language.English)

func titled(label string) string {
	return titleCaser.String(strings.ToLower(label))
}

// cliListener renders every dispatch.Dispatcher response to stdout.
// It implements dispatch.Listener.
type cliListener struct {
	mu sync.Mutex
}

func newCLIListener() *cliListener {
	return &cliListener{}
}

// OnReceiveResponse implements dispatch.Listener.
func (l *cliListener) OnReceiveResponse(response message.Response) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Print(render(response))
}

func render(response message.Response) string {
	id := shortID(response.ID)
	switch response.Payload.Kind {
	case message.KindNotificationGeneric:
		return fmt.Sprintf("[%s] %s: %s\n", id, titled("notification"), response.Payload.Notification.Message)

	case message.KindNotificationProgress:
		return fmt.Sprintf("[%s] %s %s %s\n", id, titled("progress"), progressBar(response.Payload.Notification.Progress), response.Payload.Notification.Message)

	case message.KindError:
		indented := text.Indent(response.Payload.ErrMessage, "    ")
		return fmt.Sprintf("[%s] %s:\n%s\n", id, titled("error"), indented)

	case message.KindEmpty:
		return fmt.Sprintf("[%s] %s\n", id, titled("done"))

	case message.KindCurrentTime:
		return fmt.Sprintf("[%s] %s: current time = %d\n", id, titled("result"), response.Payload.CurrentTime)

	case message.KindResultLoadedDut:
		return fmt.Sprintf("[%s] %s:\n%s", id, titled("loaded"), renderLoadedDut(response.Payload.LoadedDut))

	case message.KindResultSimulation:
		return fmt.Sprintf("[%s] %s:\n%s", id, titled("result"), renderSimulationResult(response.Payload.Simulation))

	default:
		return fmt.Sprintf("[%s] %s\n", id, response.Payload.Kind)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func progressBar(p message.Percentage) string {
	const width = 20
	filled := 0
	if p.NumSteps > 0 {
		filled = width * p.CompletedSteps / p.NumSteps
	}
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %s", strings.Repeat("=", filled), strings.Repeat(" ", width-filled), p)
}

func renderLoadedDut(loaded *message.LoadedDut) string {
	if loaded == nil {
		return ""
	}
	t := table.NewWriter()
	t.SetTitle("Probed Points")
	t.AppendHeader(table.Row{"Path"})
	for _, path := range loaded.ProbedPoints {
		t.AppendRow(table.Row{path})
	}
	return t.Render() + "\n"
}

func renderSimulationResult(result *message.SimulationResult) string {
	if result == nil {
		return ""
	}
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Waveform (current time = %d, %d ps/step)", result.CurrentTime, result.TimeStepPs))
	t.AppendHeader(table.Row{"Signal", "Width", "Runs"})
	for _, wave := range result.Waves {
		t.AppendRow(table.Row{wave.SignalName, wave.Width, len(wave.Values)})
	}
	return t.Render() + "\n"
}
