package filters

import "text/template"

// FuncMap builds the text/template FuncMap exposing every filter to the
// jinja producer step, keyed by the same names as the source's
// jinja2 filters dict.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"datetime_format":    DatetimeFormat,
		"extract":            Extract,
		"of_alphabet":        OfAlphabet,
		"roman":              Roman,
		"markdown":           Markdown,
		"dot":                Dot,
		"reply_str_value":    ReplyStrValue,
		"reply_int_value":    ReplyIntValue,
		"reply_float_value":  ReplyFloatValue,
		"reply_items":        ReplyItems,
		"find_reply":         FindReply,
		"reply_path":         ReplyPath,
		"not_empty":          NotEmpty,
	}
}
