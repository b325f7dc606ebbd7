package gpio

import (
	"errors"
	"testing"

	"github.com/sweeney/plant-sensor/internal/logic"
)

type recordingSink struct {
	init  []logic.Signal
	edges []logic.Signal
}

func (r *recordingSink) Init(sig logic.Signal) { r.init = append(r.init, sig) }
func (r *recordingSink) Edge(sig logic.Signal) { r.edges = append(r.edges, sig) }

func TestFakeEncoderPrimesSink(t *testing.T) {
	sink := &recordingSink{}
	NewFakeEncoder(0b10, sink)

	if len(sink.init) != 1 || sink.init[0] != 0b10 {
		t.Errorf("expected Init(10), got %v", sink.init)
	}
	if len(sink.edges) != 0 {
		t.Errorf("expected no edges, got %v", sink.edges)
	}
}

func TestFakeEncoderEmit(t *testing.T) {
	sink := &recordingSink{}
	enc := NewFakeEncoder(0b11, sink)

	enc.EmitAll(0b01, 0b00, 0b10)

	want := []logic.Signal{0b01, 0b00, 0b10}
	if len(sink.edges) != len(want) {
		t.Fatalf("expected %d edges, got %d", len(want), len(sink.edges))
	}
	for i, w := range want {
		if sink.edges[i] != w {
			t.Errorf("edge %d: got %02b, want %02b", i, sink.edges[i], w)
		}
	}

	sig, err := enc.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != 0b10 {
		t.Errorf("Read() = %02b, want 10", sig)
	}
}

func TestFakeEncoderClose(t *testing.T) {
	enc := NewFakeEncoder(0, &recordingSink{})
	if enc.Closed {
		t.Error("should not be closed initially")
	}
	if err := enc.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !enc.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeOutputHistory(t *testing.T) {
	out := NewFakeOutput(0)

	out.SetValue(1)
	out.SetValue(0)
	out.SetValue(1)

	v, _ := out.Value()
	if v != 1 {
		t.Errorf("Value() = %d, want 1", v)
	}
	h := out.History()
	if len(h) != 3 || h[0] != 1 || h[1] != 0 || h[2] != 1 {
		t.Errorf("History() = %v, want [1 0 1]", h)
	}
}

func TestFakeOutputError(t *testing.T) {
	out := NewFakeOutput(1)
	out.SetError = errors.New("simulated error")

	if err := out.SetValue(0); err == nil {
		t.Error("expected error")
	}
	v, _ := out.Value()
	if v != 1 {
		t.Errorf("value changed on error: %d", v)
	}
}

func TestFakeOutputCloseDrivesLow(t *testing.T) {
	out := NewFakeOutput(1)
	out.Close()
	v, _ := out.Value()
	if v != 0 {
		t.Errorf("Value() after Close = %d, want 0", v)
	}
	if !out.Closed {
		t.Error("should be closed")
	}
}

func TestFakeLEDColors(t *testing.T) {
	led := NewFakeLED()
	led.SetColor(0x440000)
	led.SetColor(0)

	c := led.Colors()
	if len(c) != 2 || c[0] != 0x440000 || c[1] != 0 {
		t.Errorf("Colors() = %v", c)
	}
}

func TestChannels(t *testing.T) {
	tests := []struct {
		rgb  uint32
		want [3]int
	}{
		{0x000000, [3]int{0, 0, 0}},
		{0x440000, [3]int{1, 0, 0}},
		{0x004400, [3]int{0, 1, 0}},
		{0x000044, [3]int{0, 0, 1}},
		{0x330033, [3]int{1, 0, 1}},
		{0xffffff, [3]int{1, 1, 1}},
	}
	for _, tt := range tests {
		got := channels(tt.rgb)
		if got[0] != tt.want[0] || got[1] != tt.want[1] || got[2] != tt.want[2] {
			t.Errorf("channels(%06x) = %v, want %v", tt.rgb, got, tt.want)
		}
	}
}
