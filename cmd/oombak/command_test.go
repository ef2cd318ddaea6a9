package main

import "testing"

func TestParseCommandRun(t *testing.T) {
	cmd, err := parseCommand("run 42")
	if err != nil {
		t.Fatalf("parseCommand: %v", err)
	}
	if cmd.kind != cmdRun || cmd.runDuration != 42 {
		t.Fatalf("got %+v", cmd)
	}
}

func TestParseCommandLoadWithQuotedPath(t *testing.T) {
	cmd, err := parseCommand(`load "my design.sv"`)
	if err != nil {
		t.Fatalf("parseCommand: %v", err)
	}
	if cmd.kind != cmdLoad || cmd.loadPath != "my design.sv" {
		t.Fatalf("got %+v", cmd)
	}
}

func TestParseCommandSet(t *testing.T) {
	cmd, err := parseCommand("set clk 0b1")
	if err != nil {
		t.Fatalf("parseCommand: %v", err)
	}
	if cmd.kind != cmdSet || cmd.signalName != "clk" || cmd.setValue.Width() != 1 {
		t.Fatalf("got %+v", cmd)
	}
}

func TestParseCommandSetPeriodic(t *testing.T) {
	cmd, err := parseCommand("set-periodic clk 10 0b0 0b1")
	if err != nil {
		t.Fatalf("parseCommand: %v", err)
	}
	if cmd.kind != cmdSetPeriodic || cmd.periodicPeriod != 10 {
		t.Fatalf("got %+v", cmd)
	}
}

func TestParseCommandProbeAndUnprobe(t *testing.T) {
	probe, err := parseCommand("probe top.child.sig")
	if err != nil || probe.kind != cmdProbe || probe.probePath != "top.child.sig" {
		t.Fatalf("probe: got %+v, err %v", probe, err)
	}

	unprobe, err := parseCommand("unprobe top.child.sig")
	if err != nil || unprobe.kind != cmdUnprobe || unprobe.probePath != "top.child.sig" {
		t.Fatalf("unprobe: got %+v, err %v", unprobe, err)
	}
}

func TestParseCommandEmptyLineIsNoop(t *testing.T) {
	cmd, err := parseCommand("   ")
	if err != nil {
		t.Fatalf("parseCommand: %v", err)
	}
	if cmd.kind != cmdNoop {
		t.Fatalf("expected a noop, got %+v", cmd)
	}
}

func TestParseCommandUnknownName(t *testing.T) {
	if _, err := parseCommand("frobnicate"); err == nil {
		t.Fatal("expected an error for an unknown command")
	}
}

func TestParseCommandWrongArgCount(t *testing.T) {
	if _, err := parseCommand("run"); err == nil {
		t.Fatal("expected an error for a missing argument")
	}
}

func TestParseCommandUnterminatedQuote(t *testing.T) {
	if _, err := parseCommand(`load "unterminated`); err == nil {
		t.Fatal("expected an error for an unterminated quoted string")
	}
}

func TestTokenizeSplitsOnWhitespaceAndHonorsQuotes(t *testing.T) {
	words, err := tokenize(`set  sig  "hello world"`)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	want := []string{"set", "sig", "hello world"}
	if len(words) != len(want) {
		t.Fatalf("got %v, want %v", words, want)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Fatalf("got %v, want %v", words, want)
		}
	}
}
