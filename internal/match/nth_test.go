package match

import "testing"

func TestNthFilterAWKDefaultField(t *testing.T) {
	f := Fuzzy{}
	n := &NthFilter{Inner: f, Fields: []int{2}}

	p, err := f.Compile("b", "", "")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	ok, offs := n.Match("  alpha   beta", p)
	if !ok {
		t.Fatalf("expected match in field 2")
	}
	if len(offs) != 1 {
		t.Fatalf("expected one offset, got %d", len(offs))
	}
	if offs[0].Begin != 10 {
		t.Fatalf("expected absolute begin offset 10, got %d", offs[0].Begin)
	}
}

func TestNthFilterNegativeField(t *testing.T) {
	f := Fuzzy{}
	n := &NthFilter{Inner: f, Fields: []int{-1}}

	p, _ := f.Compile("z", "", "")
	if ok, _ := n.Match("alpha beta gamma", p); ok {
		t.Fatalf("expected no match: last field is 'gamma'")
	}

	p2, _ := f.Compile("gam", "", "")
	if ok, _ := n.Match("alpha beta gamma", p2); !ok {
		t.Fatalf("expected match against last field")
	}
}

func TestNthFilterOutOfRangeFieldSkipped(t *testing.T) {
	f := Fuzzy{}
	n := &NthFilter{Inner: f, Fields: []int{5}}

	p, _ := f.Compile("a", "", "")
	if ok, _ := n.Match("one two", p); ok {
		t.Fatalf("out-of-range field index should contribute no match")
	}
}

func TestNthFilterUserDelimiter(t *testing.T) {
	f := Fuzzy{}
	n := &NthFilter{Inner: f, Fields: []int{2}, DelimPattern: ","}

	p, _ := f.Compile("two", "", "")
	ok, offs := n.Match("one,two,three", p)
	if !ok {
		t.Fatalf("expected match in comma-delimited field 2")
	}
	if offs[0].Begin != 4 {
		t.Fatalf("expected absolute begin 4, got %d", offs[0].Begin)
	}
}
