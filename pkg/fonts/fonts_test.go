package fonts

import "testing"

func TestMeasure(t *testing.T) {
	short, err := Measure("db", 15)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	long, err := Measure("database-primary", 15)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if short.Width <= 0 || long.Width <= short.Width {
		t.Errorf("widths = %g, %g; want 0 < short < long", short.Width, long.Width)
	}
	if short.Height != long.Height {
		t.Errorf("line height depends on text: %g vs %g", short.Height, long.Height)
	}

	big, err := Measure("db", 30)
	if err != nil {
		t.Fatal(err)
	}
	if big.Width <= short.Width || big.Height <= short.Height {
		t.Errorf("30px %+v not larger than 15px %+v", big, short)
	}

	empty, err := Measure("", 15)
	if err != nil {
		t.Fatal(err)
	}
	if empty.Width != 0 {
		t.Errorf("empty width = %g", empty.Width)
	}
}

func TestFaceCached(t *testing.T) {
	a, err := Face(13)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Face(13)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("Face(13) not cached")
	}
}
