package apiconnect

import (
	"errors"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mmynk/clubhouse/internal/apperr"
)

var kindCodes = map[apperr.Kind]connect.Code{
	apperr.KindNotFound:         connect.CodeNotFound,
	apperr.KindAlreadyExists:    connect.CodeAlreadyExists,
	apperr.KindUnavailable:      connect.CodeFailedPrecondition,
	apperr.KindValidation:       connect.CodeInvalidArgument,
	apperr.KindTransient:        connect.CodeUnavailable,
	apperr.KindUnauthenticated:  connect.CodeUnauthenticated,
	apperr.KindPermissionDenied: connect.CodePermissionDenied,
}

// CodeFor maps an error kind to its Connect code. Unknown kinds are internal.
func CodeFor(kind apperr.Kind) connect.Code {
	if code, ok := kindCodes[kind]; ok {
		return code
	}
	return connect.CodeInternal
}

// NewError converts a classified error into a Connect error. The message is
// the user-facing one; the kind travels as a google.protobuf.Struct detail
// {"kind": ..., "fields": {...}}.
func NewError(e *apperr.Error, fields map[string]string) *connect.Error {
	cerr := connect.NewError(CodeFor(e.Kind), errors.New(e.Message))

	detail := map[string]any{"kind": string(e.Kind)}
	if len(fields) > 0 {
		f := make(map[string]any, len(fields))
		for k, v := range fields {
			f[k] = v
		}
		detail["fields"] = f
	}

	if s, err := structpb.NewStruct(detail); err == nil {
		if d, err := connect.NewErrorDetail(s); err == nil {
			cerr.AddDetail(d)
		}
	}
	return cerr
}

// ErrorKind recovers the kind a server attached to a Connect error.
// Falls back to the code when no detail is present; returns "" for nil or
// non-Connect errors.
func ErrorKind(err error) apperr.Kind {
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return ""
	}
	if s := detailStruct(cerr); s != nil {
		if kind := s.Fields["kind"].GetStringValue(); kind != "" {
			return apperr.Kind(kind)
		}
	}
	for kind, code := range kindCodes {
		if code == cerr.Code() {
			return kind
		}
	}
	return ""
}

// ErrorFields returns the per-field validation messages attached to err.
func ErrorFields(err error) map[string]string {
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return nil
	}
	s := detailStruct(cerr)
	if s == nil {
		return nil
	}
	fields := s.Fields["fields"].GetStructValue()
	if fields == nil {
		return nil
	}
	out := make(map[string]string, len(fields.Fields))
	for k, v := range fields.Fields {
		out[k] = v.GetStringValue()
	}
	return out
}

func detailStruct(cerr *connect.Error) *structpb.Struct {
	for _, d := range cerr.Details() {
		msg, err := d.Value()
		if err != nil {
			continue
		}
		if s, ok := msg.(*structpb.Struct); ok {
			return s
		}
	}
	return nil
}
