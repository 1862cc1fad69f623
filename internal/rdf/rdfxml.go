package rdf

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const rdfNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

type rdfXMLDoc struct {
	XMLName      xml.Name           `xml:"RDF"`
	Descriptions []rdfXMLDescription `xml:"Description"`
}

type rdfXMLDescription struct {
	About      string            `xml:"about,attr"`
	NodeID     string            `xml:"nodeID,attr"`
	Properties []rdfXMLProperty  `xml:",any"`
}

type rdfXMLProperty struct {
	XMLName  xml.Name
	Resource string `xml:"resource,attr"`
	Lang     string `xml:"lang,attr"`
	Datatype string `xml:"datatype,attr"`
	Value    string `xml:",chardata"`
}

// ParseRDFXML parses the rdf:RDF / rdf:Description subset of RDF/XML that
// rdflib's xml serializer produces for flat (non-nested) graphs.
func ParseRDFXML(data []byte) (*Dataset, error) {
	var doc rdfXMLDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing rdf/xml: %w", err)
	}

	ds := &Dataset{}
	for _, desc := range doc.Descriptions {
		var subject Term
		switch {
		case desc.About != "":
			subject = IRITerm(desc.About)
		case desc.NodeID != "":
			subject = BlankTerm(desc.NodeID)
		default:
			continue
		}

		for _, prop := range desc.Properties {
			predicate := IRITerm(prop.XMLName.Space + prop.XMLName.Local)
			if prop.Resource != "" {
				ds.Add(subject, predicate, IRITerm(prop.Resource))
				continue
			}
			switch {
			case prop.Datatype != "":
				ds.Add(subject, predicate, TypedLiteralTerm(prop.Value, prop.Datatype))
			case prop.Lang != "":
				ds.Add(subject, predicate, LangLiteralTerm(prop.Value, prop.Lang))
			default:
				ds.Add(subject, predicate, LiteralTerm(prop.Value))
			}
		}
	}
	return ds, nil
}

// SerializeRDFXML writes ds grouped by subject as rdf:Description elements.
func SerializeRDFXML(ds *Dataset) ([]byte, error) {
	order := []string{}
	bySubject := map[string][]Triple{}
	subjectTerms := map[string]Term{}

	for _, t := range ds.Triples {
		key := subjectKey(t.Subject)
		if _, ok := bySubject[key]; !ok {
			order = append(order, key)
			subjectTerms[key] = t.Subject
		}
		bySubject[key] = append(bySubject[key], t)
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&buf, "<rdf:RDF xmlns:rdf=%q>\n", rdfNS)

	for _, key := range order {
		subject := subjectTerms[key]
		if subject.Kind == BlankNode {
			fmt.Fprintf(&buf, "  <rdf:Description rdf:nodeID=%q>\n", subject.Value)
		} else {
			fmt.Fprintf(&buf, "  <rdf:Description rdf:about=%q>\n", subject.Value)
		}
		for _, t := range bySubject[key] {
			writeRDFXMLProperty(&buf, t.Predicate, t.Object)
		}
		buf.WriteString("  </rdf:Description>\n")
	}
	buf.WriteString("</rdf:RDF>\n")
	return buf.Bytes(), nil
}

func writeRDFXMLProperty(buf *bytes.Buffer, predicate, object Term) {
	tag := propertyTagName(predicate.Value)
	ns := predicate.Value[:len(predicate.Value)-(len(tag)-len("p:"))]
	open := fmt.Sprintf("%s xmlns:p=%q", tag, ns)
	switch object.Kind {
	case IRI:
		fmt.Fprintf(buf, "    <%s rdf:resource=%q/>\n", open, object.Value)
	case BlankNode:
		fmt.Fprintf(buf, "    <%s rdf:nodeID=%q/>\n", open, object.Value)
	default:
		switch {
		case object.Datatype != "":
			fmt.Fprintf(buf, "    <%s rdf:datatype=%q>%s</%s>\n", open, object.Datatype, xmlEscape(object.Value), tag)
		case object.Lang != "":
			fmt.Fprintf(buf, "    <%s xml:lang=%q>%s</%s>\n", open, object.Lang, xmlEscape(object.Value), tag)
		default:
			fmt.Fprintf(buf, "    <%s>%s</%s>\n", open, xmlEscape(object.Value), tag)
		}
	}
}

// propertyTagName renders a predicate IRI as a "p:"-prefixed tag name: the
// local name after the last '#' or '/', or the whole IRI when there is no
// usable local name. writeRDFXMLProperty binds "p" to the rest of the IRI.
func propertyTagName(iri string) string {
	for i := len(iri) - 1; i >= 0; i-- {
		if iri[i] == '#' || iri[i] == '/' {
			if i+1 < len(iri) {
				return "p:" + iri[i+1:]
			}
			break
		}
	}
	return "p:" + iri
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
