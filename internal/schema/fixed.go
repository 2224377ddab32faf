package schema

// Fixed-field tables for each record kind. These are built-in CRM attributes
// that exist on every account regardless of configuration, so they are
// declared statically rather than fetched. The fixed and custom field
// namespaces are disjoint; composition concatenates without deduplication.

var fixedFields = map[RecordKind][]FieldDescriptor{
	KindContact: {
		{Name: "Name", Required: true, Type: "Text", InputFormat: "full name as a single string"},
		{Name: "Email", Type: "Text", InputFormat: "email address"},
		{Name: "Phone", Type: "Text", InputFormat: "phone number, any common format"},
		{Name: "Job Title", Type: "Text", InputFormat: "free-form single-line text"},
		{Name: "Company Name", Type: "Text", InputFormat: "free-form single-line text"},
		{Name: "Address", Type: "TextArea", InputFormat: "free-form multi-line text"},
		{Name: "Birthday", Type: "Date", InputFormat: "YYYY-MM-DD"},
		{Name: "Background Info", Type: "TextArea", InputFormat: "free-form multi-line text"},
		{Name: "Assigned To", Type: "User", InputFormat: "numeric user id as a string"},
	},
	KindCompany: {
		{Name: "Company Name", Required: true, Type: "Text", InputFormat: "free-form single-line text"},
		{Name: "Website", Type: "Text", InputFormat: "absolute URL including scheme"},
		{Name: "Email", Type: "Text", InputFormat: "email address"},
		{Name: "Phone", Type: "Text", InputFormat: "phone number, any common format"},
		{Name: "Address", Type: "TextArea", InputFormat: "free-form multi-line text"},
		{Name: "Background Info", Type: "TextArea", InputFormat: "free-form multi-line text"},
		{Name: "Assigned To", Type: "User", InputFormat: "numeric user id as a string"},
	},
	KindPipelineItem: {
		{Name: "Contact Id", Required: true, Type: "Text", InputFormat: "numeric contact id as a string"},
		{Name: "Status", Required: true, Type: "Dropdown", InputFormat: "exactly one of the pipeline's status names, case-sensitive"},
		{Name: "Priority", Type: "Number", InputFormat: "numeric value"},
		{Name: "Note", Type: "TextArea", InputFormat: "free-form multi-line text"},
	},
}

// FixedFields returns a copy of the fixed-field table for kind, or nil for
// an unknown kind. Callers may mutate the result freely.
func FixedFields(kind RecordKind) []FieldDescriptor {
	src := fixedFields[kind]
	if src == nil {
		return nil
	}
	out := make([]FieldDescriptor, len(src))
	copy(out, src)
	return out
}
