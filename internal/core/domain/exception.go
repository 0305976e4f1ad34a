package domain

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	spb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/status"
)

// KindPanic is the exception kind used for recovered panics.
const KindPanic = "panic"

// Exception describes a failure at the moment it happened.
type Exception struct {
	Kind       string   `json:"kind"                  yaml:"kind"`
	Message    string   `json:"message"               yaml:"message"`
	StackTrace string   `json:"stack_trace,omitempty" yaml:"stack_trace,omitempty"`
	Details    []string `json:"details,omitempty"     yaml:"details,omitempty"`
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// NewException builds an Exception from err. fallbackStack is used when the
// error chain carries no stack of its own.
func NewException(err error, fallbackStack []byte) Exception {
	if err == nil {
		return Exception{}
	}

	exc := Exception{
		Kind:    fmt.Sprintf("%T", err),
		Message: fmt.Sprint(err),
	}

	if st, ok := grpcStatus(err); ok {
		exc.Kind = "grpc." + st.Code().String()
		exc.Message = st.Message()
		exc.Details = detailTypes(st.Proto())
	}

	var tracer stackTracer
	if errors.As(err, &tracer) {
		exc.StackTrace = fmt.Sprintf("%v%+v", err, tracer.StackTrace())
	} else {
		exc.StackTrace = string(fallbackStack)
	}
	return exc
}

// NewPanicException builds an Exception from a recovered panic value.
func NewPanicException(v any, stack []byte) Exception {
	if err, ok := v.(error); ok {
		exc := NewException(err, stack)
		exc.Kind = KindPanic
		exc.StackTrace = string(stack)
		return exc
	}
	return Exception{
		Kind:       KindPanic,
		Message:    fmt.Sprint(v),
		StackTrace: string(stack),
	}
}

func grpcStatus(err error) (*status.Status, bool) {
	var se interface{ GRPCStatus() *status.Status }
	if !errors.As(err, &se) {
		return nil, false
	}
	return status.FromError(err)
}

func detailTypes(p *spb.Status) []string {
	if p == nil || len(p.GetDetails()) == 0 {
		return nil
	}
	types := make([]string, 0, len(p.GetDetails()))
	for _, d := range p.GetDetails() {
		types = append(types, d.GetTypeUrl())
	}
	return types
}
