package nn

import "testing"

func TestRepValidate(t *testing.T) {
	valid := []Rep{
		{Scalar: 0, Total: 1},
		{Scalar: 3, Total: 3},
		{Scalar: 2, Total: 26},
	}
	for _, r := range valid {
		if err := r.Validate(); err != nil {
			t.Errorf("%+v should be valid: %v", r, err)
		}
	}

	invalid := []Rep{
		{Scalar: 0, Total: 0},
		{Scalar: -1, Total: 3},
		{Scalar: 4, Total: 3},
	}
	for _, r := range invalid {
		if err := r.Validate(); err == nil {
			t.Errorf("%+v should be invalid", r)
		}
	}
}

func TestRepChannelOrder(t *testing.T) {
	r := Rep{Scalar: 2, Total: 4}

	if got := r.ChannelOrder(0, 2); got != 0 {
		t.Errorf("scalar channel order = %d, want 0", got)
	}
	if got := r.ChannelOrder(1, 2); got != 0 {
		t.Errorf("scalar channel order = %d, want 0", got)
	}
	if got := r.ChannelOrder(2, 2); got != 2 {
		t.Errorf("full channel order = %d, want 2", got)
	}
	if got := r.ChannelOrder(3, 1); got != 1 {
		t.Errorf("full channel order = %d, want 1", got)
	}
}

func TestRegular(t *testing.T) {
	r := Regular(26)
	if r.Scalar != 0 || r.Total != 26 {
		t.Errorf("Regular(26) = %+v", r)
	}
}

func TestIrreps(t *testing.T) {
	if Irreps(0) != 1 || Irreps(1) != 3 || Irreps(2) != 5 {
		t.Errorf("Irreps = %d %d %d", Irreps(0), Irreps(1), Irreps(2))
	}
}
