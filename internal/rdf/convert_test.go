package rdf

import "testing"

func TestNTriples_RoundTrip(t *testing.T) {
	input := []byte(`<http://example.org/s> <http://example.org/p> "hello" .
<http://example.org/s> <http://example.org/p2> <http://example.org/o> .
`)
	ds, err := ParseNTriples(input)
	if err != nil {
		t.Fatalf("ParseNTriples() error = %v", err)
	}
	if len(ds.Triples) != 2 {
		t.Fatalf("len(Triples) = %d, want 2", len(ds.Triples))
	}

	out := SerializeNTriples(ds)
	ds2, err := ParseNTriples(out)
	if err != nil {
		t.Fatalf("re-parsing serialized n-triples: %v", err)
	}
	if len(ds2.Triples) != 2 {
		t.Fatalf("round-tripped len(Triples) = %d, want 2", len(ds2.Triples))
	}
}

func TestTurtle_ParsesPrefixesAndLists(t *testing.T) {
	input := []byte(`@prefix ex: <http://example.org/> .
ex:alice ex:knows ex:bob, ex:carol ;
  ex:name "Alice" .
`)
	ds, err := ParseTurtle(input)
	if err != nil {
		t.Fatalf("ParseTurtle() error = %v", err)
	}
	if len(ds.Triples) != 3 {
		t.Fatalf("len(Triples) = %d, want 3", len(ds.Triples))
	}
}

func TestConvert_TurtleToNTriples(t *testing.T) {
	input := []byte(`@prefix ex: <http://example.org/> .
ex:alice ex:name "Alice" .
`)
	out, err := Convert(FormatTurtle, FormatNTriples, input)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	ds, err := ParseNTriples(out)
	if err != nil {
		t.Fatalf("ParseNTriples(converted) error = %v", err)
	}
	if len(ds.Triples) != 1 {
		t.Fatalf("len(Triples) = %d, want 1", len(ds.Triples))
	}
	if ds.Triples[0].Object.Value != "Alice" {
		t.Fatalf("object = %q, want Alice", ds.Triples[0].Object.Value)
	}
}

func TestJSONLD_RoundTrip(t *testing.T) {
	ds := &Dataset{}
	ds.Add(IRITerm("http://example.org/s"), IRITerm("http://example.org/p"), LiteralTerm("hello"))

	out, err := SerializeJSONLD(ds)
	if err != nil {
		t.Fatalf("SerializeJSONLD() error = %v", err)
	}

	ds2, err := ParseJSONLD(out)
	if err != nil {
		t.Fatalf("ParseJSONLD() error = %v", err)
	}
	if len(ds2.Triples) != 1 {
		t.Fatalf("len(Triples) = %d, want 1", len(ds2.Triples))
	}
}

func TestRDFXML_RoundTrip(t *testing.T) {
	ds := &Dataset{}
	ds.Add(IRITerm("http://example.org/s"), IRITerm("http://example.org/ns#name"), LiteralTerm("hello"))

	out, err := SerializeRDFXML(ds)
	if err != nil {
		t.Fatalf("SerializeRDFXML() error = %v", err)
	}

	ds2, err := ParseRDFXML(out)
	if err != nil {
		t.Fatalf("ParseRDFXML() error = %v", err)
	}
	if len(ds2.Triples) != 1 {
		t.Fatalf("len(Triples) = %d, want 1", len(ds2.Triples))
	}
	if ds2.Triples[0].Object.Value != "hello" {
		t.Fatalf("object = %q, want hello", ds2.Triples[0].Object.Value)
	}
}

func TestTrig_NamedGraphRoundTrip(t *testing.T) {
	input := []byte(`<http://example.org/g1> {
  <http://example.org/s> <http://example.org/p> "hello" .
}
`)
	ds, err := ParseTrig(input)
	if err != nil {
		t.Fatalf("ParseTrig() error = %v", err)
	}
	if len(ds.Triples) != 1 {
		t.Fatalf("len(Triples) = %d, want 1", len(ds.Triples))
	}
	if ds.Triples[0].Graph != "http://example.org/g1" {
		t.Fatalf("graph = %q, want http://example.org/g1", ds.Triples[0].Graph)
	}
}
