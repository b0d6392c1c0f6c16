package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError is a recovered panic turned into an error. Estimators index
// gonum matrices directly, so a shape bug surfaces as a panic that the
// experiment runner converts with SafeExecute.
type PanicError struct {
	Operation  string
	PanicValue interface{}
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// String includes the stack captured at recovery.
func (e *PanicError) String() string {
	return e.Error() + "\nStack trace:\n" + e.StackTrace
}

// NewPanicError captures the current stack for a recovered value.
func NewPanicError(operation string, value interface{}) *PanicError {
	return &PanicError{Operation: operation, PanicValue: value, StackTrace: string(debug.Stack())}
}

// Recover converts a panic into *err. Defer it with the address of a
// named error result:
//
//	func (kn *KNeighborsClassifier) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
//	    defer errors.Recover(&err, "KNeighborsClassifier.Predict")
//	    ...
//	}
//
// An error already set in *err is wrapped with the panic message.
func Recover(err *error, operation string) {
	r := recover()
	if r == nil {
		return
	}
	if *err != nil {
		*err = Wrapf(*err, "panic in %s: %v", operation, r)
		return
	}
	*err = WithStack(NewPanicError(operation, r))
}

// SafeExecute runs fn and returns its error, or a PanicError if it panics.
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
