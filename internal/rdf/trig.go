package rdf

import (
	"fmt"
	"strings"
)

// ParseTrig parses TriG as Turtle extended with named graph blocks of the
// form "<graph-iri> { ... turtle ... }" (the "GRAPH" keyword is optional
// and stripped if present). Content outside any block belongs to the
// default graph.
func ParseTrig(data []byte) (*Dataset, error) {
	src := string(data)
	ds := &Dataset{}

	for {
		braceIdx := strings.IndexByte(src, '{')
		if braceIdx < 0 {
			defaultPart, err := ParseTurtle([]byte(src))
			if err != nil {
				return nil, err
			}
			ds.Triples = append(ds.Triples, defaultPart.Triples...)
			break
		}

		head := strings.TrimSpace(src[:braceIdx])
		graphName := lastTerm(head)
		defaultHead := strings.TrimSpace(strings.TrimSuffix(head, graphName))
		defaultHead = strings.TrimSpace(strings.TrimSuffix(defaultHead, "GRAPH"))
		if defaultHead != "" {
			defaultPart, err := ParseTurtle([]byte(defaultHead))
			if err != nil {
				return nil, err
			}
			ds.Triples = append(ds.Triples, defaultPart.Triples...)
		}

		closeIdx := matchingBrace(src, braceIdx)
		if closeIdx < 0 {
			return nil, fmt.Errorf("trig: unterminated graph block")
		}
		inner := src[braceIdx+1 : closeIdx]

		graphTerm, err := resolveTurtleTerm(graphName, map[string]string{})
		if err != nil {
			return nil, fmt.Errorf("trig: resolving graph name %q: %w", graphName, err)
		}

		innerDS, err := ParseTurtle([]byte(inner))
		if err != nil {
			return nil, err
		}
		for _, t := range innerDS.Triples {
			ds.AddQuad(t.Subject, t.Predicate, t.Object, graphTerm.Value)
		}

		src = src[closeIdx+1:]
	}

	return ds, nil
}

func matchingBrace(s string, openIdx int) int {
	depth := 0
	for i := openIdx; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func lastTerm(head string) string {
	head = strings.TrimPrefix(strings.TrimSpace(head), "GRAPH")
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// SerializeTrig writes ds as named "<graph> { ... }" blocks, falling back
// to bare triples for the default (empty) graph.
func SerializeTrig(ds *Dataset) []byte {
	byGraph := map[string][]Triple{}
	var order []string
	for _, t := range ds.Triples {
		if _, ok := byGraph[t.Graph]; !ok {
			order = append(order, t.Graph)
		}
		byGraph[t.Graph] = append(byGraph[t.Graph], t)
	}

	var sb strings.Builder
	for _, graph := range order {
		triples := byGraph[graph]
		if graph == "" {
			for _, t := range triples {
				fmt.Fprintf(&sb, "%s %s %s .\n", t.Subject, t.Predicate, t.Object)
			}
			continue
		}
		fmt.Fprintf(&sb, "<%s> {\n", graph)
		for _, t := range triples {
			fmt.Fprintf(&sb, "  %s %s %s .\n", t.Subject, t.Predicate, t.Object)
		}
		sb.WriteString("}\n")
	}
	return []byte(sb.String())
}
