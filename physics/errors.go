package physics

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter reports a joint definition that violates one of its
// kind-specific invariants. Nothing is created when this is returned.
var ErrInvalidParameter = errors.New("physics: invalid parameter")

// ErrDanglingBody reports a definition that references a body handle that is
// not currently alive.
var ErrDanglingBody = errors.New("physics: dangling body reference")

// ErrUnsupportedOperation reports a runtime-control call against sub-state
// the joint kind does not declare.
var ErrUnsupportedOperation = errors.New("physics: unsupported operation")

// PreconditionError is a programmer error: using a handle after it was
// destroyed, spawning an assembly twice, despawning one that was never
// spawned. These are not recoverable conditions and are raised as panics.
type PreconditionError struct {
	Op     string
	Detail string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("physics: precondition violated in %s: %s", e.Op, e.Detail)
}

// Precondition panics with a PreconditionError unless ok holds.
func Precondition(ok bool, op, detail string) {
	if !ok {
		panic(&PreconditionError{Op: op, Detail: detail})
	}
}
