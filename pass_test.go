package bloom

import (
	"errors"
	"math"
	"testing"
	"time"
)

// recordPass adds a constant to every channel and records calls.
type recordPass struct {
	add       float32
	log       *[]string
	name      string
	configErr error
	released  bool
}

func (r *recordPass) Configure(width, height, pixelSize int) error {
	*r.log = append(*r.log, r.name+".configure")
	return r.configErr
}

func (r *recordPass) Apply(dst, src *Frame, _ time.Duration) error {
	*r.log = append(*r.log, r.name+".apply")
	for i, v := range src.pix {
		dst.pix[i] = v + r.add
	}
	return nil
}

func (r *recordPass) Release() {
	*r.log = append(*r.log, r.name+".release")
	r.released = true
}

func TestComposerRunsPassesInOrder(t *testing.T) {
	var log []string
	a := &recordPass{add: 0.1, log: &log, name: "a"}
	b := &recordPass{add: 0.2, log: &log, name: "b"}
	c := &recordPass{add: 0.3, log: &log, name: "c"}
	comp := NewComposer(a, b)
	comp.Add(c)

	if err := comp.Configure(4, 4, 1); err != nil {
		t.Fatal(err)
	}
	src := solidFrame(t, 4, 4, [4]float32{})
	dst := solidFrame(t, 4, 4, [4]float32{})
	if err := comp.Apply(dst, src, 0); err != nil {
		t.Fatal(err)
	}

	if got := dst.GetPixel(1, 1)[0]; math.Abs(float64(got)-0.6) > 1e-6 {
		t.Errorf("dst = %v, want 0.6", got)
	}
	if src.GetPixel(1, 1)[0] != 0 {
		t.Error("composer modified the source frame")
	}

	comp.Release()
	want := []string{
		"a.configure", "b.configure", "c.configure",
		"a.apply", "b.apply", "c.apply",
		"c.release", "b.release", "a.release",
	}
	if len(log) != len(want) {
		t.Fatalf("calls = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("calls = %v, want %v", log, want)
		}
	}
}

func TestComposerConfigureError(t *testing.T) {
	var log []string
	errBad := errors.New("bad size")
	comp := NewComposer(&recordPass{log: &log, name: "a", configErr: errBad})
	if err := comp.Configure(4, 4, 1); !errors.Is(err, errBad) {
		t.Errorf("Configure() error = %v, want %v", err, errBad)
	}
}

func TestComposerEmptyCopies(t *testing.T) {
	comp := NewComposer()
	src := solidFrame(t, 2, 2, [4]float32{0.5, 0.5, 0.5, 1})
	dst := solidFrame(t, 2, 2, [4]float32{})
	if err := comp.Apply(dst, src, 0); err != nil {
		t.Fatal(err)
	}
	assertFramesEqual(t, dst, src, 0)
}

func TestApplyRejectsMismatchedFrames(t *testing.T) {
	small := solidFrame(t, 1, 2, [4]float32{})
	full := solidFrame(t, 2, 2, [4]float32{0.5, 0.5, 0.5, 1})

	out := NewOutputPass()
	if err := out.Configure(2, 2, 1); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		pass     Pass
		dst, src *Frame
	}{
		{"empty composer smaller dst", NewComposer(), small, full},
		{"empty composer nil src", NewComposer(), full, nil},
		{"empty composer nil dst", NewComposer(), nil, full},
		{"output nil src", out, full, nil},
		{"output nil dst", out, nil, full},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pass.Apply(tt.dst, tt.src, 0)
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Apply() error = %v, want *ConfigError", err)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("Apply() error = %v, want ErrConfiguration", err)
			}
		})
	}
	if small.GetPixel(0, 0) != ([4]float32{}) {
		t.Error("rejected Apply wrote into the destination")
	}
}

func TestComposerWithFilterAndOutput(t *testing.T) {
	f := newTestFilter(t)
	comp := NewComposer(f, NewOutputPass())
	if len(comp.Passes()) != 2 {
		t.Fatalf("len(Passes()) = %d, want 2", len(comp.Passes()))
	}
	if err := comp.Configure(8, 8, 1); err != nil {
		t.Fatal(err)
	}

	src := solidFrame(t, 8, 8, [4]float32{0.2, 0.2, 0.2, 1})
	if err := comp.Apply(src, src, time.Second/30); err != nil {
		t.Fatal(err)
	}
	// Encoding brightens mid-tones; bloom only adds light.
	if got := src.GetPixel(4, 4)[0]; got <= 0.2 || got > 1 {
		t.Errorf("output = %v, want in (0.2, 1]", got)
	}
}

func TestOutputPass(t *testing.T) {
	o := NewOutputPass()
	if err := o.Configure(0, 4, 1); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Configure(0,4) error = %v, want ErrConfiguration", err)
	}
	if err := o.Configure(2, 1, 1); err != nil {
		t.Fatal(err)
	}

	src := solidFrame(t, 2, 1, [4]float32{})
	src.SetPixel(0, 0, [4]float32{0.21404114, 2, -1, 0.5})
	dst := solidFrame(t, 2, 1, [4]float32{})
	if err := o.Apply(dst, src, 0); err != nil {
		t.Fatal(err)
	}
	got := dst.GetPixel(0, 0)
	if math.Abs(float64(got[0])-0.5) > 1e-4 || got[1] != 1 || got[2] != 0 || got[3] != 0.5 {
		t.Errorf("encoded = %v, want ~[0.5 1 0 0.5]", got)
	}

	wrong := solidFrame(t, 1, 1, [4]float32{})
	if err := o.Apply(wrong, src, 0); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Apply() size mismatch error = %v, want ErrConfiguration", err)
	}
}
