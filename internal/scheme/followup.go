package scheme

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/ipcbridge/runtime/internal/httpmsg"
	"github.com/ipcbridge/runtime/internal/queued"
)

// ErrMissingQueuedID is the error whose text the follow-up Handler built
// by NewQueuedFollowUpHandler writes as its 400 body when the request
// carries no id query parameter.
var ErrMissingQueuedID = errors.New("scheme: missing id query parameter")

// NewQueuedFollowUpHandler returns a Handler for the reserved scheme a
// WebView's follow-up request uses to retrieve a QueuedResponse by id
// (spec.md §5's hot path, scenarios S4/S5): a static body is written
// and finished immediately, a streaming entry's EventStream/ChunkStream
// callbacks are rebound onto this Response via store.Attach so events
// arriving afterward (or right away, in a caller that drives the
// stream synchronously) are written through WriteEvent/Write as they
// come, finishing the Response once the stream reports finished=true.
//
// Cancelling the follow-up request (Request.Callbacks.Cancel) cancels
// the matching queued entry, stopping delivery within one event/chunk
// boundary.
func NewQueuedFollowUpHandler(handlers *SchemeHandlers, store *queued.Store) Handler {
	return func(request *Request, done func(*Response)) {
		response := handlers.NewResponse(request)

		id, err := queuedRequestID(request)
		if err != nil {
			response.WriteHead(400, httpmsg.Headers{})
			response.Write([]byte(err.Error()))
			response.Finish()
			done(response)
			return
		}

		entry, ok := store.Get(id)
		if !ok {
			response.WriteHead(404, httpmsg.Headers{})
			response.Finish()
			done(response)
			return
		}

		request.Callbacks.Cancel = func() { store.Cancel(id) }

		if !entry.IsStreaming() {
			response.WriteHead(200, entry.Headers)
			response.Write(entry.Body)
			response.Finish()
			store.Remove(id)
			done(response)
			return
		}

		response.WriteHead(200, entry.Headers)
		store.Attach(id,
			func(name string, data []byte, finished bool) bool {
				if finished {
					response.Finish()
					store.Remove(id)
					return true
				}
				return response.WriteEvent(Event{Name: name, Data: string(data)}) == nil
			},
			func(chunk []byte, finished bool) bool {
				if finished {
					response.Finish()
					store.Remove(id)
					return true
				}
				return response.Write(chunk) == nil
			},
		)
		done(response)
	}
}

func queuedRequestID(request *Request) (queued.ID, error) {
	values, err := url.ParseQuery(request.Query)
	if err != nil {
		return 0, err
	}
	raw := values.Get("id")
	if raw == "" {
		return 0, ErrMissingQueuedID
	}
	return strconv.ParseUint(raw, 10, 64)
}
