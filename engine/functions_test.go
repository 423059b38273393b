package engine

import (
	"math"
	"testing"

	"github.com/viant/descmatch/descriptor"
)

func TestVectorFunctions(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()
	if err := RegisterVectorFunctions(); err != nil {
		t.Fatalf("second RegisterVectorFunctions = %v, want nil", err)
	}

	zero := descriptor.Encode(descriptor.Descriptor{0, 0})
	threeFour := descriptor.Encode(descriptor.Descriptor{3, 4})

	var dist float64
	if err := db.QueryRow(`SELECT vec_l2(?, ?)`, zero, threeFour).Scan(&dist); err != nil {
		t.Fatalf("vec_l2 query failed: %v", err)
	}
	if math.Abs(dist-5) > 1e-6 {
		t.Fatalf("vec_l2 = %v, want 5", dist)
	}

	var dim int
	if err := db.QueryRow(`SELECT vec_dim(?)`, threeFour).Scan(&dim); err != nil {
		t.Fatalf("vec_dim query failed: %v", err)
	}
	if dim != 2 {
		t.Fatalf("vec_dim = %d, want 2", dim)
	}

	var null *float64
	if err := db.QueryRow(`SELECT vec_l2(NULL, ?)`, zero).Scan(&null); err != nil {
		t.Fatalf("vec_l2(NULL) query failed: %v", err)
	}
	if null != nil {
		t.Fatalf("vec_l2(NULL, x) = %v, want NULL", *null)
	}

	three := descriptor.Encode(descriptor.Descriptor{1, 2, 3})
	if err := db.QueryRow(`SELECT vec_l2(?, ?)`, zero, three).Scan(&dist); err == nil {
		t.Fatalf("vec_l2 with mismatched dims succeeded, want error")
	}
}
