package ipc

import (
	"strconv"

	"github.com/ipcbridge/runtime/internal/httpmsg"
	"github.com/ipcbridge/runtime/internal/jsonvalue"
	"github.com/ipcbridge/runtime/internal/queued"
)

// Result is the reply envelope a Router handler produces for a
// Message: it carries either a Value that already has the final
// wire shape, or separate Data/Err payloads the overlay rules below
// assemble into one (spec.md §4.7, grounded on ipc/result.cc).
type Result struct {
	Message        Message
	Source         string
	Seq            string
	Token          string
	ID             uint64
	Value          jsonvalue.Any
	Data           jsonvalue.Any
	Err            jsonvalue.Any
	Headers        httpmsg.Headers
	QueuedResponse queued.Response
}

// NewResult builds the base Result for message/seq: source, token, and
// the queued response's worker id are all pulled from the message.
func NewResult(seq string, message Message) Result {
	return Result{
		Message: message,
		Source:  message.Name,
		Seq:     seq,
		Token:   message.GetOr("ipc-token", ""),
		QueuedResponse: queued.Response{
			WorkerID: message.Get("runtime-worker-id"),
		},
	}
}

// NewResultWithValue attaches value directly, bypassing Data/Err.
func NewResultWithValue(seq string, message Message, value jsonvalue.Any) Result {
	return NewResultWithQueuedResponse(seq, message, value, queued.Response{})
}

// NewResultWithQueuedResponse is NewResultWithValue plus an attached
// queued response whose headers become the Result's headers.
func NewResultWithQueuedResponse(seq string, message Message, value jsonvalue.Any, qr queued.Response) Result {
	r := NewResult(seq, message)
	r.QueuedResponse = qr
	r.Headers = qr.Headers
	if r.QueuedResponse.WorkerID == "" {
		r.QueuedResponse.WorkerID = message.Get("runtime-worker-id")
	}
	if !value.IsEmpty() {
		r.Value = value
	}
	return r
}

// NewErrResult builds a Result carrying an error payload, the
// counterpart of ipc::Result::Err.
func NewErrResult(message Message, errValue jsonvalue.Any) Result {
	r := NewResult(message.Seq, message)
	r.Err = errValue
	r.Token = message.GetOr("ipc-token", "")
	return r
}

// NewErrResultMessage is NewErrResult with a plain string message,
// wrapped as {"message": error}.
func NewErrResultMessage(message Message, errText string) Result {
	return NewErrResult(message, jsonvalue.ObjectOf(jsonvalue.Entry{Key: "message", Value: jsonvalue.String(errText)}))
}

// NewDataResult builds a Result carrying a successful data payload and
// an optional queued response.
func NewDataResult(message Message, value jsonvalue.Any, qr queued.Response) Result {
	r := NewResult(message.Seq, message)
	r.Data = value
	r.QueuedResponse = qr
	r.Token = message.GetOr("ipc-token", "")
	r.Headers = qr.Headers
	return r
}

// JSON assembles the final reply object, following ipc/result.cc's
// overlay rules exactly:
//
//   - If Value is a non-null object already shaped like a reply (it
//     has "source" and either "data" or "err"), only source/token/id
//     are overlaid onto it; its own data/err untouched.
//   - If Value is any other non-null value, it is returned verbatim.
//   - Otherwise a fresh {source, token, id} envelope is built, and
//     Err (preferred) or Data is merged in; if that payload is itself
//     an object carrying "id"/"token"/"source", those override the
//     envelope's own.
func (r Result) JSON() jsonvalue.Any {
	if !r.Value.IsNull() {
		if obj, ok := r.Value.Object(); ok {
			if obj.Has("source") && (obj.Has("data") || obj.Has("err")) {
				obj.Set("source", jsonvalue.String(r.Source))
				obj.Set("token", tokenValue(r.Token))
				obj.Set("id", jsonvalue.String(strconv.FormatUint(r.ID, 10)))
				return r.Value
			}
		}
		return r.Value
	}

	entries := jsonvalue.NewObject()
	envelope, _ := entries.Object()
	envelope.Set("source", jsonvalue.String(r.Source))
	envelope.Set("token", tokenValue(r.Token))
	envelope.Set("id", jsonvalue.String(strconv.FormatUint(r.ID, 10)))

	if !r.Err.IsNull() {
		envelope.Set("err", r.Err)
		overlayFromPayload(envelope, r.Err)
	} else if !r.Data.IsNull() {
		envelope.Set("data", r.Data)
		overlayFromPayload(envelope, r.Data)
	}

	return entries
}

func overlayFromPayload(envelope *jsonvalue.Object, payload jsonvalue.Any) {
	obj, ok := payload.Object()
	if !ok {
		return
	}
	for _, key := range []string{"id", "token", "source"} {
		if obj.Has(key) {
			envelope.Set(key, obj.Get(key))
		}
	}
}

func tokenValue(token string) jsonvalue.Any {
	if token == "" {
		return jsonvalue.Null()
	}
	return jsonvalue.String(token)
}

// Str renders the assembled reply as JSON text.
func (r Result) Str() string {
	return r.JSON().String()
}
