package match

import "testing"

func TestFuzzyMatchBasic(t *testing.T) {
	f := Fuzzy{}
	p, err := f.Compile("fb", "", "")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	ok, offs := f.Match("foobar", p)
	if !ok {
		t.Fatalf("expected match")
	}
	if len(offs) != 1 {
		t.Fatalf("expected one offset, got %d", len(offs))
	}
	if offs[0].Begin != 0 || offs[0].End != 4 {
		t.Fatalf("unexpected span: %+v", offs[0])
	}
}

func TestFuzzyNoMatch(t *testing.T) {
	f := Fuzzy{}
	p, err := f.Compile("xyz", "", "")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if ok, _ := f.Match("foobar", p); ok {
		t.Fatalf("expected no match")
	}
}

func TestFuzzyEmptyQuery(t *testing.T) {
	f := Fuzzy{}
	if !f.Empty("") {
		t.Fatalf("expected empty query to report Empty")
	}
	p, err := f.Compile("", "", "")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ok, offs := f.Match("anything", p)
	if !ok || len(offs) != 0 {
		t.Fatalf("empty query should match with no offsets, got ok=%v offs=%v", ok, offs)
	}
}

func TestFuzzySmartCase(t *testing.T) {
	f := Fuzzy{}
	p, err := f.Compile("Foo", "", "")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if ok, _ := f.Match("foobar", p); ok {
		t.Fatalf("uppercase query should force case-sensitive match, expected no match")
	}
	if ok, _ := f.Match("Foobar", p); !ok {
		t.Fatalf("expected case-sensitive match against Foobar")
	}
}

func TestFuzzyForceCaseInsensitive(t *testing.T) {
	f := Fuzzy{ForceCaseInsensitive: true}
	p, err := f.Compile("Foo", "", "")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if ok, _ := f.Match("foobar", p); !ok {
		t.Fatalf("expected forced case-insensitive match")
	}
}

func TestFuzzyUnicodeQuery(t *testing.T) {
	f := Fuzzy{}
	p, err := f.Compile("café", "", "")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ok, offs := f.Match("un café noir", p)
	if !ok {
		t.Fatalf("expected match on multi-byte rune query")
	}
	if offs[0].Begin != 3 {
		t.Fatalf("expected byte offset 3, got %d", offs[0].Begin)
	}
}
