package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunPolledEcho(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-device", "flash", "-tx", "9f 01 02"}, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "rx: 9f0102") {
		t.Errorf("Expected echoed bytes, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "wire: 3 bytes on spi0") {
		t.Errorf("Expected wire summary, got:\n%s", out.String())
	}
}

func TestRunDMAVerbose(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-device", "leds", "-read", "4", "-verbose"}, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	s := out.String()
	for _, want := range []string{
		"rx: 00000000",
		"[spi] acquire: requested clock: 5000000, resulting clock: 4500000 BR divider: 3",
		"[EVENTS] DMA bus=1",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected '%s' in output:\n%s", want, s)
		}
	}
}

func TestRunSharpDisplay(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-device", "leds", "-demo", "sharpmem"}, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "display: 160x68 frame sent") {
		t.Errorf("Expected display summary, got:\n%s", out.String())
	}
}

func TestRunBoardFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	board := `{
		"buses": [{"name": "spi0", "mosi": "PA7", "miso": "PA6", "sclk": "PA5"}],
		"devices": [{"name": "adc", "cs": "PA3", "mode": 1}]
	}`
	if err := os.WriteFile(path, []byte(board), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run([]string{"-config", path, "-device", "adc", "-tx", "ff"}, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "rx: ff") {
		t.Errorf("Expected echoed byte, got:\n%s", out.String())
	}
}

func TestRunErrors(t *testing.T) {
	tests := [][]string{
		{"-device", "nope", "-tx", "00"},
		{"-device", "flash"},
		{"-device", "flash", "-tx", "zz"},
		{"-device", "flash", "-demo", "oled"},
		{"-config", "/nonexistent/board.json"},
	}
	for _, args := range tests {
		var out bytes.Buffer
		if err := run(args, &out); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}
