package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/peterh/liner"
)

// scriptReader feeds fixed lines to the REPL.
type scriptReader struct {
	lines   []string
	end     error
	history []string
}

func (s *scriptReader) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		if s.end != nil {
			return "", s.end
		}
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptReader) AppendHistory(item string) {
	s.history = append(s.history, item)
}

func TestREPL_ExecutesLines(t *testing.T) {
	var got [][]string
	exec := func(_ context.Context, args []string) error {
		got = append(got, args)
		return nil
	}
	var out bytes.Buffer
	r := New(Config{Output: &out}, exec)
	reader := &scriptReader{lines: []string{"slot list", "", "# comment", `slot set 1 --kind text "hello world"`, "exit", "mode show"}}

	if err := r.loop(context.Background(), reader); err != nil {
		t.Fatalf("loop() error = %v", err)
	}

	want := [][]string{{"slot", "list"}, {"slot", "set", "1", "--kind", "text", "hello world"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("executed mismatch (-want +got):\n%s", diff)
	}
	if len(reader.history) != 3 {
		t.Errorf("history = %v, want 3 entries", reader.history)
	}
}

func TestREPL_Exit(t *testing.T) {
	tests := []struct {
		name string
		r    *scriptReader
	}{
		{"exit command", &scriptReader{lines: []string{"exit"}}},
		{"quit command", &scriptReader{lines: []string{"quit"}}},
		{"EOF", &scriptReader{}},
		{"ctrl-c", &scriptReader{end: liner.ErrPromptAborted}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(Config{Output: io.Discard}, func(context.Context, []string) error {
				t.Error("nothing should execute")
				return nil
			})
			if err := r.loop(context.Background(), tt.r); err != nil {
				t.Errorf("loop() error = %v", err)
			}
		})
	}
}

func TestREPL_ReportsErrors(t *testing.T) {
	var out bytes.Buffer
	r := New(Config{Output: &out}, func(context.Context, []string) error {
		return errors.New("slot index out of range")
	})
	reader := &scriptReader{lines: []string{"slot get 99", `echo "open`}}

	if err := r.loop(context.Background(), reader); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Error: slot index out of range") {
		t.Errorf("missing exec error: %q", out.String())
	}
	if !strings.Contains(out.String(), "unterminated") {
		t.Errorf("missing parse error: %q", out.String())
	}
}

func TestREPL_ReadError(t *testing.T) {
	r := New(Config{Output: io.Discard}, nil)
	err := r.loop(context.Background(), &scriptReader{end: errors.New("tty gone")})
	if err == nil {
		t.Error("expected read error")
	}
}

func TestREPL_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := New(Config{Output: io.Discard}, nil)
	if err := r.loop(ctx, &scriptReader{lines: []string{"slot list"}}); err != nil {
		t.Errorf("loop() error = %v", err)
	}
}

func TestREPL_Help(t *testing.T) {
	var out bytes.Buffer
	r := New(Config{Output: &out, Commands: []string{"slot list", "mode show"}}, nil)
	r.loop(context.Background(), &scriptReader{lines: []string{"help"}})

	if !strings.Contains(out.String(), "mode show") || !strings.Contains(out.String(), "slot list") {
		t.Errorf("help output = %q", out.String())
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"slot list", []string{"slot", "list"}, false},
		{"  slot   get\t2 ", []string{"slot", "get", "2"}, false},
		{`state visit '{"mode":"live"}'`, []string{"state", "visit", `{"mode":"live"}`}, false},
		{`a "b c" d`, []string{"a", "b c", "d"}, false},
		{`a b\ c`, []string{"a", "b c"}, false},
		{`a ""`, []string{"a", ""}, false},
		{`'it''s'`, []string{"its"}, false},
		{`"open`, nil, true},
		{`trailing\`, nil, true},
		{"", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SplitArgs(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitArgs(%q) error = %v", tt.in, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SplitArgs(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestCompleter(t *testing.T) {
	c := NewCompleter([]string{"slot list", "slot get", "mode show"})

	if diff := cmp.Diff([]string{"slot get", "slot list"}, c.Complete("slot")); diff != "" {
		t.Errorf("Complete(slot) mismatch (-want +got):\n%s", diff)
	}
	if got := c.Complete("x"); got != nil {
		t.Errorf("Complete(x) = %v, want nil", got)
	}
}

// memHistory is an in-memory historyStore.
type memHistory struct {
	lines []string
}

func (m *memHistory) ReadHistory(r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.lines = strings.Fields(string(data))
	return len(m.lines), nil
}

func (m *memHistory) WriteHistory(w io.Writer) (int, error) {
	n := 0
	for _, l := range m.lines {
		if _, err := io.WriteString(w, l+"\n"); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func TestHistory_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history")
	h := NewHistory(path)

	if err := h.Load(&memHistory{}); err != nil {
		t.Fatalf("Load() of missing file error = %v", err)
	}
	if err := h.Save(&memHistory{lines: []string{"ping", "version"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded := &memHistory{}
	if err := h.Load(loaded); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"ping", "version"}, loaded.lines); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}

	if err := NewHistory("").Save(loaded); err != nil {
		t.Errorf("disabled history Save() error = %v", err)
	}
}
