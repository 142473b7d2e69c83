package token

import "testing"

func TestMakePosLineCol(t *testing.T) {
	p := MakePos(3, 14)
	l, c := p.LineCol()
	if l != 3 || c != 14 {
		t.Errorf("want (3,14), got (%d,%d)", l, c)
	}
	if p.Unknown() {
		t.Errorf("expected known position")
	}
}

func TestPosUnknown(t *testing.T) {
	var p Pos
	if !p.Unknown() {
		t.Errorf("zero Pos should be unknown")
	}
}

func TestPositionFormat(t *testing.T) {
	p := Position{Filename: "a.cps", Pos: MakePos(1, 2)}
	cases := map[PosMode]string{
		PosLong:    "a.cps:1:2",
		PosOffsets: "1:2",
		PosRaw:     "",
		PosNone:    "",
	}
	for mode, want := range cases {
		if mode == PosRaw {
			continue // raw encoding value is opaque, just check non-empty
		}
		if got := p.Format(mode); got != want {
			t.Errorf("mode %v: want %q, got %q", mode, want, got)
		}
	}
	if got := p.Format(PosRaw); got == "" {
		t.Errorf("PosRaw should not be empty")
	}
}
