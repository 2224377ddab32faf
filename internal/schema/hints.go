package schema

// inputFormats maps CRM custom-field types to the input-format hint surfaced
// in composed schemas. Unlisted types fall back to defaultInputFormat.
var inputFormats = map[string]string{
	"Text":      "free-form single-line text",
	"TextArea":  "free-form multi-line text",
	"Dropdown":  "exactly one of the valid options, case-sensitive",
	"RadioList": "exactly one of the valid options, case-sensitive",
	"Checkbox":  "array of selected options",
	"Date":      "YYYY-MM-DD",
	"Number":    "numeric value",
	"Currency":  "decimal amount without a currency symbol",
	"Link":      "absolute URL including scheme",
	"User":      "numeric user id as a string",
}

// defaultInputFormat is used for custom-field types without a dedicated hint.
const defaultInputFormat = "free-form text"

// choiceTypes marks the field types whose option lists are meaningful.
var choiceTypes = map[string]bool{
	"Dropdown":  true,
	"RadioList": true,
	"Checkbox":  true,
}

// inputFormatFor returns the input-format hint for a CRM field type.
func inputFormatFor(fieldType string) string {
	if hint, ok := inputFormats[fieldType]; ok {
		return hint
	}
	return defaultInputFormat
}
