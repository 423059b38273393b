package descriptor

import (
	"errors"
	"testing"
)

func TestSetValidate(t *testing.T) {
	testCases := []struct {
		name    string
		set     Set
		wantErr bool
	}{
		{name: "empty", set: nil},
		{name: "uniform", set: Set{{1, 2}, {3, 4}, {5, 6}}},
		{name: "mixed dims", set: Set{{1, 2}, {3}}, wantErr: true},
		{name: "zero dim", set: Set{{}}, wantErr: true},
	}
	for _, tc := range testCases {
		err := tc.set.Validate()
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("%s: Validate() = %v, want ErrInvalidInput", tc.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: Validate() = %v, want nil", tc.name, err)
		}
	}
}

func TestFeaturesValidate_Alignment(t *testing.T) {
	f := &Features{
		Keypoints:   []Keypoint{{X: 1, Y: 2}},
		Descriptors: Set{{1, 2}, {3, 4}},
	}
	if err := f.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Validate() = %v, want ErrInvalidInput", err)
	}
	f.Keypoints = append(f.Keypoints, Keypoint{X: 3, Y: 4})
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
	if f.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", f.Len())
	}
	var nilFeatures *Features
	if nilFeatures.Len() != 0 {
		t.Fatalf("nil Len() = %d, want 0", nilFeatures.Len())
	}
}
