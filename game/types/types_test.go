package types

import "testing"

func TestParseDirection(t *testing.T) {
	tests := []struct {
		key  string
		want Direction
		ok   bool
	}{
		{"up", Up, true},
		{"UP", Up, true},
		{"w", Up, true},
		{"k", Up, true},
		{"right", Right, true},
		{"l", Right, true},
		{"down", Down, true},
		{"s", Down, true},
		{"left", Left, true},
		{"h", Left, true},
		{"", 0, false},
		{"space", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseDirection(tt.key)
		if ok != tt.ok {
			t.Errorf("ParseDirection(%q): expected ok=%v, got %v", tt.key, tt.ok, ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseDirection(%q): expected %v, got %v", tt.key, tt.want, got)
		}
	}
}

func TestDirectionOpposite(t *testing.T) {
	pairs := map[Direction]Direction{Up: Down, Down: Up, Left: Right, Right: Left}
	for d, want := range pairs {
		if got := d.Opposite(); got != want {
			t.Errorf("Expected opposite of %v to be %v, got %v", d, want, got)
		}
		// Moving forward then backward returns to the origin
		p := Position{X: 3, Y: 3}
		if back := p.Add(d.Delta()).Add(d.Opposite().Delta()); back != p {
			t.Errorf("Expected %v after round trip along %v, got %v", p, d, back)
		}
	}
}

func TestGridContains(t *testing.T) {
	g := Grid{Width: 10, Height: 10}

	inside := []Position{{0, HeaderRows}, {9, 9}, {5, 5}}
	for _, p := range inside {
		if !g.Contains(p) {
			t.Errorf("Expected %v to be inside %v", p, g)
		}
	}

	outside := []Position{{-1, 5}, {10, 5}, {5, 10}, {5, HeaderRows - 1}, {5, -1}}
	for _, p := range outside {
		if g.Contains(p) {
			t.Errorf("Expected %v to be outside %v", p, g)
		}
	}
}

func TestGridCells(t *testing.T) {
	if got := (Grid{Width: 10, Height: 10}).Cells(); got != 10*(10-HeaderRows) {
		t.Errorf("Expected %d cells, got %d", 10*(10-HeaderRows), got)
	}
	if got := (Grid{Width: 10, Height: HeaderRows}).Cells(); got != 0 {
		t.Errorf("Expected no cells for a header-only grid, got %d", got)
	}
}

func TestClientIDShort(t *testing.T) {
	id := NewClientID()
	if len(id.Short()) != 8 {
		t.Errorf("Expected 8 character short id, got %q", id.Short())
	}
	if ClientID("ab").Short() != "ab" {
		t.Errorf("Expected short ids to be returned unchanged")
	}
	if NewClientID() == id {
		t.Error("Expected distinct client ids")
	}
}
