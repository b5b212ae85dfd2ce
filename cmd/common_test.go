package cmd

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/gridframe-cli/internal/format"
	"github.com/AnyUserName/gridframe-cli/internal/render"
	"github.com/AnyUserName/gridframe-cli/internal/source"
)

func TestParseAnchor(t *testing.T) {
	tests := []struct {
		in      string
		want    render.Anchor
		wantErr bool
	}{
		{"0.5,0.5", render.Center, false},
		{"0, 1", render.Anchor{X: 0, Y: 1}, false},
		{"1,0.25", render.Anchor{X: 1, Y: 0.25}, false},
		{"0.5", render.Anchor{}, true},
		{"a,b", render.Anchor{}, true},
		{"1.5,0", render.Anchor{}, true},
		{"0,-0.1", render.Anchor{}, true},
	}
	for _, tt := range tests {
		got, err := parseAnchor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAnchor(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseAnchor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStyleFlags(t *testing.T) {
	var f styleFlags
	c := &cobra.Command{Use: "x"}
	f.register(c)
	if err := c.Flags().Parse([]string{"--format", "square", "--fill", "cover", "--color", "#112233,#445566", "--anchor", "0,1"}); err != nil {
		t.Fatal(err)
	}
	st, err := f.parse(c)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if st.auto || st.format != format.Square {
		t.Errorf("format = %v auto=%v", st.format, st.auto)
	}
	if st.fill != render.FillCrop {
		t.Errorf("fill = %v", st.fill)
	}
	if !st.explicit || len(st.colors) != 2 || st.colors[1].Hex() != "#445566" {
		t.Errorf("colors = %v explicit=%v", st.colors, st.explicit)
	}
	if st.anchor != (render.Anchor{X: 0, Y: 1}) {
		t.Errorf("anchor = %v", st.anchor)
	}

	var d styleFlags
	c2 := &cobra.Command{Use: "y"}
	d.register(c2)
	st, err = d.parse(c2)
	if err != nil {
		t.Fatal(err)
	}
	if !st.auto || st.explicit || st.fill != render.FillBackground || st.anchor != render.Center {
		t.Errorf("defaults = %+v", st)
	}

	var bad styleFlags
	c3 := &cobra.Command{Use: "z"}
	bad.register(c3)
	_ = c3.Flags().Parse([]string{"--format", "banner"})
	if _, err := bad.parse(c3); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestChunk(t *testing.T) {
	files := make([]source.File, 20)
	var sizes []int
	for batch := range chunk(files, 9) {
		sizes = append(sizes, len(batch))
	}
	if len(sizes) != 3 || sizes[0] != 9 || sizes[1] != 9 || sizes[2] != 2 {
		t.Errorf("batches = %v", sizes)
	}
	for range chunk(nil, 9) {
		t.Error("empty input yielded a batch")
	}
}
