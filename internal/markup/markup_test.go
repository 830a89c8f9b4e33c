package markup

import (
	"fmt"
	"strings"
	"testing"
)

func TestVBar_Layers(t *testing.T) {
	got := VBar(50, 4, 15, "#FFFFFF", "#666666")
	want := "^c#666666^^r0,0,4,15^^c#FFFFFF^^r0,8,4,7^"
	if got != want {
		t.Fatalf("VBar() = %q, want %q", got, want)
	}
}

func TestVBar_ClampsOutOfRange(t *testing.T) {
	for _, p := range []int{-1, -50, -1000} {
		if got, want := VBar(p, 4, 11, "#fff", "#000"), VBar(0, 4, 11, "#fff", "#000"); got != want {
			t.Fatalf("VBar(%d) = %q, want %q", p, got, want)
		}
	}
	for _, p := range []int{101, 150, 1000} {
		if got, want := VBar(p, 4, 11, "#fff", "#000"), VBar(100, 4, 11, "#fff", "#000"); got != want {
			t.Fatalf("VBar(%d) = %q, want %q", p, got, want)
		}
	}
}

func TestVBar_HeightAndOffset(t *testing.T) {
	for _, h := range []int{1, 5, 11, 15} {
		for p := 0; p <= 100; p += 7 {
			y := (CanvasHeight - h) / 2
			barHeight := p * h / 100
			got := VBar(p, 3, h, "#fff", "#000")
			wantBg := fmt.Sprintf("^r0,%d,3,%d^", y, h)
			wantFg := fmt.Sprintf("^r0,%d,3,%d^", y+h-barHeight, barHeight)
			if !strings.HasSuffix(got, "^c#fff^"+wantFg) {
				t.Fatalf("VBar(%d, h=%d) = %q, want foreground %q", p, h, got, wantFg)
			}
			if !strings.HasPrefix(got, "^c#000^"+wantBg) {
				t.Fatalf("VBar(%d, h=%d) = %q, want background %q", p, h, got, wantBg)
			}
		}
	}
}

func TestVBar_OmitsEmptyLayers(t *testing.T) {
	if got, want := VBar(100, 2, 15, "#fff", ""), "^c#fff^^r0,0,2,15^"; got != want {
		t.Fatalf("VBar() foreground only = %q, want %q", got, want)
	}
	if got, want := VBar(100, 2, 15, "", "#000"), "^c#000^^r0,0,2,15^"; got != want {
		t.Fatalf("VBar() background only = %q, want %q", got, want)
	}
	if got := VBar(100, 2, 15, "", ""); got != "" {
		t.Fatalf("VBar() no colours = %q, want empty", got)
	}
}

func TestHBar(t *testing.T) {
	got := HBar(25, 20, 11, "#0f0", "#444")
	want := "^c#0f0^^r0,2,5,11^^c#444^^r5,2,15,11^"
	if got != want {
		t.Fatalf("HBar() = %q, want %q", got, want)
	}
}

func TestBorderedBars(t *testing.T) {
	got := VBarBordered(100, 6, 15, "#fff", "#444", "#eee")
	want := "^c#eee^^r0,0,6,15^^f1^^c#444^^r0,1,4,13^^c#fff^^r0,1,4,13^^f-1^"
	if got != want {
		t.Fatalf("VBarBordered() = %q, want %q", got, want)
	}

	got = HBarBordered(50, 10, 7, "#fff", "#444", "#eee")
	want = "^c#eee^^r0,4,10,7^^f1^^c#fff^^r0,5,4,5^^c#444^^r4,5,4,5^^f-1^"
	if got != want {
		t.Fatalf("HBarBordered() = %q, want %q", got, want)
	}
}

func TestPercentColor(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{0, "#f00000"},
		{50, "#807000"},
		{100, "#00f000"},
		{-10, "#f00000"},
		{250, "#00f000"},
	}
	for _, tt := range tests {
		if got := PercentColor(tt.percent); got != tt.want {
			t.Fatalf("PercentColor(%d) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestRamp(t *testing.T) {
	if got := Ramp("#000000", "#ffffff", 0, 15); got != "#000000" {
		t.Fatalf("Ramp(start) = %q, want #000000", got)
	}
	if got := Ramp("#000000", "#ffffff", 15, 15); got != "#ffffff" {
		t.Fatalf("Ramp(end) = %q, want #ffffff", got)
	}
	if got := Ramp("bogus", "#ffffff", 3, 15); got != "bogus" {
		t.Fatalf("Ramp(invalid) = %q, want input unchanged", got)
	}
}

func TestDirectives(t *testing.T) {
	if got := Fg("#FF0000") + Bg("#000000") + Forward(-4); got != "^c#FF0000^^a#000000^^f-4^" {
		t.Fatalf("directives = %q", got)
	}
}
