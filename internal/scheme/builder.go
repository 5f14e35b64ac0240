package scheme

import "github.com/ipcbridge/runtime/internal/bytes"

// Builder assembles a Request fluently, mirroring the reference
// Request::Builder's chained setters.
type Builder struct {
	request *Request
}

// NewBuilder starts a Builder for a fresh Request.
func NewBuilder() *Builder {
	return &Builder{request: NewRequest(RequestOptions{})}
}

func (b *Builder) SetScheme(scheme string) *Builder {
	b.request.Scheme = scheme
	return b
}

func (b *Builder) SetMethod(method string) *Builder {
	b.request.Method = method
	return b
}

func (b *Builder) SetHostname(hostname string) *Builder {
	b.request.Hostname = hostname
	return b
}

func (b *Builder) SetPathname(pathname string) *Builder {
	b.request.Pathname = pathname
	return b
}

func (b *Builder) SetQuery(query string) *Builder {
	b.request.Query = query
	return b
}

func (b *Builder) SetFragment(fragment string) *Builder {
	b.request.Fragment = fragment
	return b
}

func (b *Builder) SetHeader(name, value string) *Builder {
	b.request.Headers.Set(name, value)
	return b
}

func (b *Builder) SetHeaders(headers map[string]string) *Builder {
	for k, v := range headers {
		b.request.Headers.Set(k, v)
	}
	return b
}

func (b *Builder) SetBody(body []byte) *Builder {
	b.request.Body = bytes.FromBytes(body)
	return b
}

func (b *Builder) SetCallbacks(callbacks RequestCallbacks) *Builder {
	b.request.Callbacks = callbacks
	return b
}

func (b *Builder) SetIsCancelled(fn func() bool) *Builder {
	b.request.isCancelledFn = fn
	return b
}

// Build returns the assembled Request.
func (b *Builder) Build() *Request {
	return b.request
}
