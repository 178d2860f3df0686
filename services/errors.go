package services

import (
	"fmt"
)

// FaultKind classifies what failed during a loop iteration
type FaultKind string

const (
	FaultSensor    FaultKind = "sensor"
	FaultOutput    FaultKind = "output"
	FaultTransport FaultKind = "transport"
	FaultResponse  FaultKind = "response"
)

// Fault is a non-fatal failure of one operation. The loop reports it and
// carries on with the next iteration.
type Fault struct {
	Kind FaultKind
	Op   string
	Err  error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Kind, f.Op, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

func newFault(kind FaultKind, op string, err error) *Fault {
	return &Fault{Kind: kind, Op: op, Err: err}
}

// Result is the outcome of a remote store call. Store calls never return a
// Go error; failures carry a Fault and a human-readable Message.
type Result struct {
	Success bool
	Message string
	Body    []byte
	Fault   *Fault
}

func successResult(body []byte) Result {
	return Result{Success: true, Message: "Success", Body: body}
}

func failureResult(kind FaultKind, op, message string, err error) Result {
	return Result{Success: false, Message: message, Fault: newFault(kind, op, err)}
}

// Err returns the fault as an error, or nil on success
func (r Result) Err() error {
	if r.Fault == nil {
		return nil
	}
	return r.Fault
}
