package tui

import (
	"reflect"
	"testing"
)

func TestEditorCommand(t *testing.T) {
	tests := []struct {
		editor string
		line   int
		want   []string
	}{
		{"vim", 12, []string{"vim", "+12", "/p/a.tsx"}},
		{"/usr/bin/nvim", 3, []string{"/usr/bin/nvim", "+3", "/p/a.tsx"}},
		{"code --wait", 12, []string{"code", "--wait", "/p/a.tsx"}},
		{"vim", 0, []string{"vim", "/p/a.tsx"}},
		{"", 5, []string{"vi", "+5", "/p/a.tsx"}},
	}
	for _, tt := range tests {
		cmd := editorCommand(tt.editor, "/p/a.tsx", tt.line)
		if !reflect.DeepEqual(cmd.Args, tt.want) {
			t.Errorf("editorCommand(%q, %d) args = %v, want %v", tt.editor, tt.line, cmd.Args, tt.want)
		}
	}
}
