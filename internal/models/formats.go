package models

// Canonical, closed set of file formats the pipeline can produce or consume.
// Names match the wire vocabulary used by Format.Steps option values.
var (
	FormatJSON      = FileFormat{Name: "json", ContentType: "application/json", Extension: "json"}
	FormatHTML      = FileFormat{Name: "html", ContentType: "text/html", Extension: "html"}
	FormatPDF       = FileFormat{Name: "pdf", ContentType: "application/pdf", Extension: "pdf"}
	FormatDOCX      = FileFormat{Name: "docx", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Extension: "docx"}
	FormatMarkdown  = FileFormat{Name: "markdown", ContentType: "text/markdown", Extension: "md"}
	FormatODT       = FileFormat{Name: "odt", ContentType: "application/vnd.oasis.opendocument.text", Extension: "odt"}
	FormatRST       = FileFormat{Name: "rst", ContentType: "text/x-rst", Extension: "rst"}
	FormatLaTeX     = FileFormat{Name: "latex", ContentType: "application/x-latex", Extension: "tex"}
	FormatEPUB      = FileFormat{Name: "epub", ContentType: "application/epub+zip", Extension: "epub"}
	FormatDocBook4  = FileFormat{Name: "docbook4", ContentType: "application/docbook+xml", Extension: "xml"}
	FormatDocBook5  = FileFormat{Name: "docbook5", ContentType: "application/docbook+xml", Extension: "xml"}
	FormatPPTX      = FileFormat{Name: "pptx", ContentType: "application/vnd.openxmlformats-officedocument.presentationml.presentation", Extension: "pptx"}
	FormatRTF       = FileFormat{Name: "rtf", ContentType: "application/rtf", Extension: "rtf"}
	FormatAsciiDoc  = FileFormat{Name: "asciidoc", ContentType: "text/asciidoc", Extension: "adoc"}
	FormatRDFXML    = FileFormat{Name: "rdf-xml", ContentType: "application/rdf+xml", Extension: "rdf"}
	FormatN3        = FileFormat{Name: "n3", ContentType: "text/n3", Extension: "n3"}
	FormatNTriples  = FileFormat{Name: "ntriples", ContentType: "application/n-triples", Extension: "nt"}
	FormatTurtle    = FileFormat{Name: "turtle", ContentType: "text/turtle", Extension: "ttl"}
	FormatTriG      = FileFormat{Name: "trig", ContentType: "application/trig", Extension: "trig"}
	FormatJSONLD    = FileFormat{Name: "json-ld", ContentType: "application/ld+json", Extension: "jsonld"}
)

var fileFormats = []FileFormat{
	FormatJSON, FormatHTML, FormatPDF, FormatDOCX, FormatMarkdown, FormatODT,
	FormatRST, FormatLaTeX, FormatEPUB, FormatDocBook4, FormatDocBook5,
	FormatPPTX, FormatRTF, FormatAsciiDoc, FormatRDFXML, FormatN3,
	FormatNTriples, FormatTurtle, FormatTriG, FormatJSONLD,
}

// rdfFormatAliases resolves the accepted alternate spellings for RDF
// serializations on both the input and output side of rdflib-convert.
var rdfFormatAliases = map[string]string{
	"nt":        FormatNTriples.Name,
	"ntriples":  FormatNTriples.Name,
	"ttl":       FormatTurtle.Name,
	"turtle":    FormatTurtle.Name,
	"n3":        FormatN3.Name,
	"rdfxml":    FormatRDFXML.Name,
	"rdf-xml":   FormatRDFXML.Name,
	"xml":       FormatRDFXML.Name,
	"jsonld":    FormatJSONLD.Name,
	"json-ld":   FormatJSONLD.Name,
	"trig":      FormatTriG.Name,
}

// LookupFileFormat resolves a wire name to its canonical FileFormat,
// accepting the RDF aliases in rdfFormatAliases.
func LookupFileFormat(name string) (FileFormat, bool) {
	if canonical, ok := rdfFormatAliases[name]; ok {
		name = canonical
	}
	for _, f := range fileFormats {
		if f.Name == name {
			return f, true
		}
	}
	return FileFormat{}, false
}
