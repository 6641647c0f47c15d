package pagination

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewWindow(t *testing.T) {
	w, err := NewWindow(10)
	if err != nil {
		t.Fatalf("NewWindow(10) error = %v", err)
	}
	if w.Start != 0 || w.Size != 10 {
		t.Errorf("NewWindow(10) = %+v, want {0 10}", w)
	}

	for _, size := range []int{0, -3} {
		if _, err := NewWindow(size); !errors.Is(err, ErrInvalidWindowSize) {
			t.Errorf("NewWindow(%d) error = %v, want ErrInvalidWindowSize", size, err)
		}
	}
}

func TestWindowFor(t *testing.T) {
	tests := []struct {
		page, size int
		want       int
	}{
		{0, 10, 0},
		{9, 10, 0},
		{10, 10, 10},
		{23, 10, 20},
		{7, 5, 5},
		{-1, 10, 0},
	}

	for _, tt := range tests {
		got := WindowFor(tt.page, tt.size)
		if got.Start != tt.want {
			t.Errorf("WindowFor(%d, %d).Start = %d, want %d", tt.page, tt.size, got.Start, tt.want)
		}
		if got.Start%tt.size != 0 {
			t.Errorf("WindowFor(%d, %d).Start = %d is not aligned", tt.page, tt.size, got.Start)
		}
	}
}

func TestWindow_Pages(t *testing.T) {
	tests := []struct {
		name       string
		window     Window
		totalPages int
		want       []int
	}{
		{"full window", Window{Start: 0, Size: 5}, 12, []int{0, 1, 2, 3, 4}},
		{"cut at total", Window{Start: 10, Size: 5}, 12, []int{10, 11}},
		{"past the end", Window{Start: 15, Size: 5}, 12, nil},
		{"no pages", Window{Start: 0, Size: 5}, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.window.Pages(tt.totalPages)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Pages(%d) = %v, want %v", tt.totalPages, got, tt.want)
			}
		})
	}
}

func TestWindow_Neighbours(t *testing.T) {
	w := Window{Start: 10, Size: 10}

	if !w.HasPrevious() {
		t.Error("window at 10 should have a previous window")
	}
	if (Window{Start: 0, Size: 10}).HasPrevious() {
		t.Error("first window should not have a previous window")
	}
	if !w.HasNext(21) {
		t.Error("window 10-19 should have a next window with 21 pages")
	}
	if w.HasNext(20) {
		t.Error("window 10-19 should not have a next window with 20 pages")
	}
	if !w.Contains(19) || w.Contains(20) || w.Contains(9) {
		t.Error("Contains() boundaries are wrong")
	}
}

func TestWindow_Shift(t *testing.T) {
	w := Window{Start: 10, Size: 10}

	fwd, ok := w.Shift(Forward)
	if !ok || fwd.Start != 20 {
		t.Errorf("Shift(Forward) = %+v, %v; want start 20", fwd, ok)
	}

	back, ok := w.Shift(Backward)
	if !ok || back.Start != 0 {
		t.Errorf("Shift(Backward) = %+v, %v; want start 0", back, ok)
	}

	first := Window{Start: 0, Size: 10}
	same, ok := first.Shift(Backward)
	if ok || same != first {
		t.Errorf("Shift(Backward) from 0 = %+v, %v; want unchanged, false", same, ok)
	}
}

func TestStep(t *testing.T) {
	tests := []struct {
		name      string
		current   int
		window    Window
		dir       Direction
		wantNext  int
		wantStart int
		wantOK    bool
	}{
		{"forward inside window", 3, Window{0, 10}, Forward, 4, 0, true},
		{"forward across boundary", 9, Window{0, 10}, Forward, 10, 10, true},
		{"backward inside window", 13, Window{10, 10}, Backward, 12, 10, true},
		{"backward across boundary", 10, Window{10, 10}, Backward, 9, 0, true},
		{"backward at zero", 0, Window{0, 10}, Backward, 0, 0, false},
		{"backward at 20", 20, Window{20, 10}, Backward, 19, 10, true},
		{"forward small window", 4, Window{0, 5}, Forward, 5, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, w, ok := Step(tt.current, tt.window, tt.dir)
			if next != tt.wantNext || w.Start != tt.wantStart || ok != tt.wantOK {
				t.Errorf("Step(%d, %+v, %v) = (%d, %+v, %v), want (%d, start %d, %v)",
					tt.current, tt.window, tt.dir, next, w, ok, tt.wantNext, tt.wantStart, tt.wantOK)
			}
			if w.Start%w.Size != 0 {
				t.Errorf("window start %d is not a multiple of %d", w.Start, w.Size)
			}
		})
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input   string
		want    Direction
		wantErr bool
	}{
		{"next", Forward, false},
		{"Forward", Forward, false},
		{"prev", Backward, false},
		{" previous ", Backward, false},
		{"sideways", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDirection(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDirection(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDirection(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
