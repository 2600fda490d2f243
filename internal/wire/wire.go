// Package wire provides the binary view stream of the launchboard HTTP API.
//
// Messages are google.protobuf.Struct envelopes, length-delimited with
// protobuf's standard varint prefix, so any protobuf runtime can read them
// without generated code. An envelope carries a sequence number and either a
// "view" or an "error" field.
package wire

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtxerr/launchboard/config"
	"github.com/xtxerr/launchboard/internal/errors"
	"github.com/xtxerr/launchboard/internal/query"
)

// ContentType is the media type of a view stream.
const ContentType = "application/x-protobuf"

// Envelope field names.
const (
	FieldSeq   = "seq"
	FieldView  = "view"
	FieldError = "error"
)

// Reader reads length-delimited envelopes from an io.Reader.
// It is safe for concurrent use.
type Reader struct {
	r  *bufio.Reader
	mu sync.Mutex
}

// NewReader creates a Reader wrapping the given io.Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Read reads and unmarshals the next envelope. It returns io.EOF at a clean
// end of stream.
func (r *Reader) Read() (*structpb.Struct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	env := &structpb.Struct{}
	opts := protodelim.UnmarshalOptions{
		MaxSize: config.DefaultMaxMessageSize,
	}
	if err := opts.UnmarshalFrom(r.r, env); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read envelope: %w", err)
	}
	return env, nil
}

// Frame is a decoded envelope.
type Frame struct {
	Seq  uint64
	View *query.View
	Err  *RemoteError
}

// ReadFrame reads the next envelope and decodes it.
func (r *Reader) ReadFrame() (*Frame, error) {
	env, err := r.Read()
	if err != nil {
		return nil, err
	}
	return DecodeFrame(env)
}

// Writer writes length-delimited envelopes to an io.Writer.
// It is safe for concurrent use.
type Writer struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriter creates a Writer wrapping the given io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write marshals and writes an envelope with length prefix.
func (w *Writer) Write(env *structpb.Struct) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := protodelim.MarshalTo(w.w, env); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	return nil
}

// WriteView writes v as the envelope for seq.
func (w *Writer) WriteView(seq uint64, v *query.View) error {
	env, err := NewViewEnvelope(seq, v)
	if err != nil {
		return err
	}
	return w.Write(env)
}

// WriteError writes err as the envelope for seq.
func (w *Writer) WriteError(seq uint64, err error) error {
	return w.Write(NewErrorEnvelope(seq, err))
}

// =============================================================================
// Envelope Helpers
// =============================================================================

// ViewToStruct converts a view to a Struct with the same field names as its
// JSON encoding.
func ViewToStruct(v *query.View) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode view: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("encode view: %w", err)
	}
	return structpb.NewStruct(m)
}

// StructToView is the inverse of ViewToStruct.
func StructToView(s *structpb.Struct) (*query.View, error) {
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return nil, fmt.Errorf("decode view: %w", err)
	}
	v := &query.View{}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("decode view: %w", err)
	}
	return v, nil
}

// NewViewEnvelope wraps v with its sequence number.
func NewViewEnvelope(seq uint64, v *query.View) (*structpb.Struct, error) {
	view, err := ViewToStruct(v)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldSeq:  structpb.NewNumberValue(float64(seq)),
		FieldView: structpb.NewStructValue(view),
	}}, nil
}

// NewErrorStruct creates the error body for err. The code is mapped with
// errors.ErrorToCode.
func NewErrorStruct(err error) *structpb.Struct {
	code := errors.ErrorToCode(err)
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"code":    structpb.NewNumberValue(float64(code)),
		"name":    structpb.NewStringValue(errors.CodeName(code)),
		"message": structpb.NewStringValue(err.Error()),
	}}
}

// NewErrorEnvelope wraps the error body for err with its sequence number.
func NewErrorEnvelope(seq uint64, err error) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldSeq:   structpb.NewNumberValue(float64(seq)),
		FieldError: structpb.NewStructValue(NewErrorStruct(err)),
	}}
}

// DecodeFrame decodes an envelope produced by NewViewEnvelope or
// NewErrorEnvelope.
func DecodeFrame(env *structpb.Struct) (*Frame, error) {
	f := &Frame{}
	if seq, ok := env.Fields[FieldSeq]; ok {
		f.Seq = uint64(seq.GetNumberValue())
	}

	if e := env.Fields[FieldError].GetStructValue(); e != nil {
		f.Err = &RemoteError{
			Code:    int32(e.Fields["code"].GetNumberValue()),
			Message: e.Fields["message"].GetStringValue(),
		}
		return f, nil
	}

	view := env.Fields[FieldView].GetStructValue()
	if view == nil {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "envelope has neither view nor error")
	}
	v, err := StructToView(view)
	if err != nil {
		return nil, err
	}
	f.View = v
	return f, nil
}

// RemoteError is an error received in an error envelope.
type RemoteError struct {
	Code    int32
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", errors.CodeName(e.Code), e.Message)
}

// Is maps the wire code back to its sentinel so errors.Is works across the
// wire.
func (e *RemoteError) Is(target error) bool {
	switch e.Code {
	case errors.CodeInvalidRange:
		return target == errors.ErrInvalidRange
	case errors.CodeDataLoad:
		return target == errors.ErrDataLoad
	case errors.CodeUnsupportedFormat:
		return target == errors.ErrUnsupportedFormat
	case errors.CodeInvalidRequest:
		return target == errors.ErrInvalidRequest
	case errors.CodeInternal:
		return target == errors.ErrInternal
	}
	return false
}
