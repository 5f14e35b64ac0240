package ipc

import "testing"

func TestParseMessageBasicFields(t *testing.T) {
	m, err := ParseMessage("ipc://echo.hello?seq=1&index=2&value=world", false)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if m.Name != "echo.hello" {
		t.Errorf("Name = %q, want echo.hello", m.Name)
	}
	if m.Seq != "1" {
		t.Errorf("Seq = %q, want 1", m.Seq)
	}
	if m.Index != 2 {
		t.Errorf("Index = %d, want 2", m.Index)
	}
	if m.Value != "world" {
		t.Errorf("Value = %q, want world", m.Value)
	}
}

func TestParseMessageIndexDefaultsToMinusOne(t *testing.T) {
	m, err := ParseMessage("ipc://echo", false)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if m.Index != -1 {
		t.Errorf("Index = %d, want -1", m.Index)
	}
}

func TestMessageGetValueOverlay(t *testing.T) {
	m, err := ParseMessage("ipc://echo?value=first", false)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if got := m.Get("value"); got != "first" {
		t.Errorf("Get(value) = %q, want first", got)
	}
	m.Value = "override"
	if got := m.Get("value"); got != "override" {
		t.Errorf("Get(value) after override = %q, want override", got)
	}
}

func TestMessageGetPercentDecodes(t *testing.T) {
	m, err := ParseMessage("ipc://echo?name=hello%20world", false)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if got := m.Get("name"); got != "hello world" {
		t.Errorf("Get(name) = %q, want %q", got, "hello world")
	}
}

func TestMessagePeekValueReadsJSONField(t *testing.T) {
	m, err := ParseMessage(`ipc://echo?value=%7B%22kind%22%3A%22ping%22%7D`, true)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	kind, ok := m.PeekValue("kind")
	if !ok || kind != "ping" {
		t.Errorf("PeekValue(kind) = %q, %v, want ping, true", kind, ok)
	}
	if _, ok := m.PeekValue("missing"); ok {
		t.Error("PeekValue(missing) should report false")
	}
}

func TestMessageMap(t *testing.T) {
	m, err := ParseMessage("ipc://echo?a=1&b=2", false)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	data := m.Map()
	if data["a"] != "1" || data["b"] != "2" {
		t.Errorf("Map() = %v", data)
	}
}
