package pixel

import "testing"

func TestPixelPackUnpack(t *testing.T) {
	p := NewPixel(0x11, 0x22, 0x33, 0x44)
	if p.R() != 0x11 || p.G() != 0x22 || p.B() != 0x33 || p.A() != 0x44 {
		t.Fatalf("got (%x,%x,%x,%x)", p.R(), p.G(), p.B(), p.A())
	}
}

func TestPixelSignedChannel(t *testing.T) {
	p := NewPixel(0x80, 0, 0, 0)
	if got := p.Channel(0, Unsigned); got != 128 {
		t.Errorf("unsigned: got %d, want 128", got)
	}
	if got := p.Channel(0, Signed); got != -128 {
		t.Errorf("signed: got %d, want -128", got)
	}
}

func TestScalerPackUnpack(t *testing.T) {
	s := NewScaler(256, -256, 0, 100)
	if s.R() != 256 || s.G() != -256 || s.B() != 0 || s.A() != 100 {
		t.Fatalf("got (%d,%d,%d,%d)", s.R(), s.G(), s.B(), s.A())
	}
	if s.IsZero() {
		t.Error("expected non-zero scaler")
	}
	if !ZeroScaler.IsZero() {
		t.Error("expected zero scaler to report zero")
	}
}

func TestClampChannel(t *testing.T) {
	cases := []struct {
		v    int32
		mode SignMode
		want uint8
	}{
		{300, Unsigned, 255},
		{-5, Unsigned, 0},
		{128, Unsigned, 128},
		{200, Signed, 127},
		{-200, Signed, 128}, // -128 as uint8
	}
	for _, c := range cases {
		if got := ClampChannel(c.v, c.mode); got != c.want {
			t.Errorf("ClampChannel(%d,%v) = %d, want %d", c.v, c.mode, got, c.want)
		}
	}
}
