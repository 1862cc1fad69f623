package rdf

import "fmt"

// Format is one of the six RDF serializations rdflib-convert accepts.
// "n3" is parsed and serialized as Turtle, matching the practical
// equivalence rdflib itself treats them with for the subset this worker
// produces.
type Format string

const (
	FormatRDFXML   Format = "rdf-xml"
	FormatN3       Format = "n3"
	FormatNTriples Format = "ntriples"
	FormatTurtle   Format = "turtle"
	FormatTriG     Format = "trig"
	FormatJSONLD   Format = "json-ld"
)

// Parse decodes data in the given format into a Dataset.
func Parse(format Format, data []byte) (*Dataset, error) {
	switch format {
	case FormatRDFXML:
		return ParseRDFXML(data)
	case FormatN3, FormatTurtle:
		return ParseTurtle(data)
	case FormatNTriples:
		return ParseNTriples(data)
	case FormatTriG:
		return ParseTrig(data)
	case FormatJSONLD:
		return ParseJSONLD(data)
	default:
		return nil, fmt.Errorf("rdf: unsupported source format %q", format)
	}
}

// Serialize encodes ds in the given format.
func Serialize(format Format, ds *Dataset) ([]byte, error) {
	switch format {
	case FormatRDFXML:
		return SerializeRDFXML(ds)
	case FormatN3, FormatTurtle:
		return SerializeTurtle(ds), nil
	case FormatNTriples:
		return SerializeNTriples(ds), nil
	case FormatTriG:
		return SerializeTrig(ds), nil
	case FormatJSONLD:
		return SerializeJSONLD(ds)
	default:
		return nil, fmt.Errorf("rdf: unsupported target format %q", format)
	}
}

// Convert parses data as fromFormat and re-serializes it as toFormat.
func Convert(fromFormat, toFormat Format, data []byte) ([]byte, error) {
	ds, err := Parse(fromFormat, data)
	if err != nil {
		return nil, fmt.Errorf("rdf: parsing %s: %w", fromFormat, err)
	}
	out, err := Serialize(toFormat, ds)
	if err != nil {
		return nil, fmt.Errorf("rdf: serializing %s: %w", toFormat, err)
	}
	return out, nil
}
