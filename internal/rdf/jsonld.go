package rdf

import (
	"encoding/json"
	"fmt"
)

// jsonldValueRef is one compacted JSON-LD value object:
// {"@id": "..."} or {"@value": "...", "@language"|"@type": "..."}.
type jsonldValueRef struct {
	ID       string `json:"@id,omitempty"`
	Value    string `json:"@value,omitempty"`
	Language string `json:"@language,omitempty"`
	Type     string `json:"@type,omitempty"`
}

// ParseJSONLD parses a flattened JSON-LD document: a top-level array of
// nodes, each an object keyed by "@id" plus predicate IRIs mapping to
// arrays of value objects. This covers what rdflib's json-ld serializer
// produces in flattened mode.
func ParseJSONLD(data []byte) (*Dataset, error) {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing json-ld: %w", err)
	}

	ds := &Dataset{}
	for _, node := range raw {
		idVal, ok := node["@id"].(string)
		if !ok {
			continue
		}
		subject := subjectTermFromID(idVal)

		for key, val := range node {
			if key == "@id" || key == "@type" {
				continue
			}
			predicate := IRITerm(key)
			values, ok := val.([]any)
			if !ok {
				continue
			}
			for _, v := range values {
				obj, ok := v.(map[string]any)
				if !ok {
					continue
				}
				object, err := jsonldObjectTerm(obj)
				if err != nil {
					return nil, err
				}
				ds.Add(subject, predicate, object)
			}
		}
	}
	return ds, nil
}

func subjectTermFromID(id string) Term {
	if len(id) > 2 && id[:2] == "_:" {
		return BlankTerm(id[2:])
	}
	return IRITerm(id)
}

func jsonldObjectTerm(obj map[string]any) (Term, error) {
	if id, ok := obj["@id"].(string); ok {
		return subjectTermFromID(id), nil
	}
	value, _ := obj["@value"].(string)
	if lang, ok := obj["@language"].(string); ok && lang != "" {
		return LangLiteralTerm(value, lang), nil
	}
	if dt, ok := obj["@type"].(string); ok && dt != "" {
		return TypedLiteralTerm(value, dt), nil
	}
	return LiteralTerm(value), nil
}

// SerializeJSONLD writes ds as a flattened JSON-LD array of nodes.
func SerializeJSONLD(ds *Dataset) ([]byte, error) {
	order := []string{}
	bySubject := map[string]map[string][]jsonldValueRef{}

	for _, t := range ds.Triples {
		subjKey := subjectKey(t.Subject)
		if _, ok := bySubject[subjKey]; !ok {
			bySubject[subjKey] = map[string][]jsonldValueRef{}
			order = append(order, subjKey)
		}
		bySubject[subjKey][t.Predicate.Value] = append(bySubject[subjKey][t.Predicate.Value], objectValueRef(t.Object))
	}

	var nodes []map[string]any
	for _, subjKey := range order {
		node := map[string]any{"@id": subjKey}
		for pred, vals := range bySubject[subjKey] {
			node[pred] = vals
		}
		nodes = append(nodes, node)
	}

	out, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing json-ld: %w", err)
	}
	return out, nil
}

func subjectKey(t Term) string {
	if t.Kind == BlankNode {
		return "_:" + t.Value
	}
	return t.Value
}

func objectValueRef(t Term) jsonldValueRef {
	switch t.Kind {
	case IRI:
		return jsonldValueRef{ID: t.Value}
	case BlankNode:
		return jsonldValueRef{ID: "_:" + t.Value}
	default:
		return jsonldValueRef{Value: t.Value, Language: t.Lang, Type: t.Datatype}
	}
}
