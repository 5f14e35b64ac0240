// Package httpmsg implements the HTTP-shaped Headers, Status, Request,
// and Response types used by scheme handlers and queued responses
// (spec.md §4.4 and §4.9).
package httpmsg

import (
	"strconv"
	"strings"
)

// Status pairs a numeric status code with its reason phrase.
type Status struct {
	Code int
	Text string
}

var statusTable = map[int]string{
	100: "Continue",
	101: "Switching Protocols",
	102: "Processing",
	103: "Early Hints",
	200: "OK",
	201: "Created",
	202: "Accepted",
	203: "Non-Authoritative Information",
	204: "No Content",
	205: "Reset Content",
	206: "Partial Content",
	207: "Multi-Status",
	208: "Already Reported",
	226: "IM Used",
	300: "Multiple Choices",
	301: "Moved Permanently",
	302: "Found",
	303: "See Other",
	304: "Not Modified",
	305: "Use Proxy",
	307: "Temporary Redirect",
	308: "Permanent Redirect",
	400: "Bad Request",
	401: "Unauthorized",
	402: "Payment Required",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	406: "Not Acceptable",
	407: "Proxy Authentication Required",
	408: "Request Timeout",
	409: "Conflict",
	410: "Gone",
	411: "Length Required",
	412: "Precondition Failed",
	413: "Payload Too Large",
	414: "URI Too Long",
	415: "Unsupported Media Type",
	416: "Range Not Satisfiable",
	417: "Expectation Failed",
	418: "I'm a Teapot",
	421: "Misdirected Request",
	422: "Unprocessable Entity",
	423: "Locked",
	424: "Failed Dependency",
	425: "Too Early",
	426: "Upgrade Required",
	428: "Precondition Required",
	429: "Too Many Requests",
	431: "Request Header Fields Too Large",
	451: "Unavailable For Legal Reasons",
	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Timeout",
	505: "HTTP Version Not Supported",
	506: "Variant Also Negotiates",
	507: "Insufficient Storage",
	508: "Loop Detected",
	509: "Bandwidth Limit Exceeded",
	510: "Not Extended",
	511: "Network Authentication Required",
}

// StatusText returns the reason phrase for code, or "" if unknown.
func StatusText(code int) string {
	return statusTable[code]
}

// StatusCode returns the code whose reason phrase matches text
// case-insensitively, or 0 if none matches.
func StatusCode(text string) int {
	for code, t := range statusTable {
		if strings.EqualFold(t, text) {
			return code
		}
	}
	return 0
}

// NewStatus builds a Status from a code, defaulting the text from the
// table when it is known.
func NewStatus(code int) Status {
	return Status{Code: code, Text: StatusText(code)}
}

// NewStatusWithText builds a Status from an explicit code/text pair.
func NewStatusWithText(code int, text string) Status {
	return Status{Code: code, Text: text}
}

// Str renders "<code> <Normalized Text>".
func (s Status) Str() string {
	text := normalizeStatusText(s.Text)
	code := strconv.Itoa(s.Code)
	if text == "" {
		return code
	}
	return code + " " + text
}

func normalizeStatusText(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = toProperCase(w)
	}
	return strings.Join(words, " ")
}

func toProperCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = toUpperRune(r[0])
	return string(r)
}

func toUpperRune(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
