package engine

import (
	"database/sql/driver"
	"fmt"
	"sync"

	sqlite "modernc.org/sqlite"

	"github.com/viant/descmatch/descriptor"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterVectorFunctions registers vec_l2 and vec_dim with the driver. The
// functions are visible on connections opened after the first call; later
// calls are no-ops.
//
//	vec_l2(a BLOB, b BLOB) REAL   Euclidean distance between two descriptors
//	vec_dim(a BLOB) INTEGER       number of components of a descriptor
//
// Both return NULL when an argument is NULL.
func RegisterVectorFunctions() error {
	registerOnce.Do(func() {
		if err := sqlite.RegisterDeterministicScalarFunction("vec_l2", 2, vecL2Impl); err != nil {
			registerErr = fmt.Errorf("engine: register vec_l2: %w", err)
			return
		}
		if err := sqlite.RegisterDeterministicScalarFunction("vec_dim", 1, vecDimImpl); err != nil {
			registerErr = fmt.Errorf("engine: register vec_dim: %w", err)
		}
	})
	return registerErr
}

func asDescriptor(fn string, arg driver.Value) (descriptor.Descriptor, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		d, err := descriptor.Decode(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fn, err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T; want BLOB", fn, arg)
	}
}

func vecL2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("vec_l2: expected 2 arguments, got %d", len(args))
	}
	a, err := asDescriptor("vec_l2", args[0])
	if err != nil {
		return nil, err
	}
	b, err := asDescriptor("vec_l2", args[1])
	if err != nil {
		return nil, err
	}
	if args[0] == nil || args[1] == nil {
		return nil, nil
	}
	d, err := descriptor.Distance(a, b)
	if err != nil {
		return nil, fmt.Errorf("vec_l2: %w", err)
	}
	return float64(d), nil
}

func vecDimImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("vec_dim: expected 1 argument, got %d", len(args))
	}
	if args[0] == nil {
		return nil, nil
	}
	d, err := asDescriptor("vec_dim", args[0])
	if err != nil {
		return nil, err
	}
	return int64(len(d)), nil
}
