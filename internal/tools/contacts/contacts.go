// Package contacts provides the MCP tools for CRM contact and company
// records. Companies are contacts with the IsCompany flag set; the CRM
// stores both through the same wire functions.
//
// Tools registered by [Register]:
//   - "create_contact", "edit_contact", "get_contact", "delete_contact"
//   - "search_contacts"
//   - "create_company", "edit_company"
package contacts

import (
	"context"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/crmgate/crmgate/internal/tools"
)

// createContactArgs is the input for the "create_contact" tool.
type createContactArgs struct {
	Name           string         `json:"name" jsonschema:"The contact's full name"`
	Email          string         `json:"email,omitempty" jsonschema:"Email address"`
	Phone          string         `json:"phone,omitempty" jsonschema:"Phone number"`
	JobTitle       string         `json:"job_title,omitempty" jsonschema:"Job title"`
	CompanyName    string         `json:"company_name,omitempty" jsonschema:"Name of the company the contact works at"`
	Address        string         `json:"address,omitempty" jsonschema:"Postal address"`
	Birthday       string         `json:"birthday,omitempty" jsonschema:"Birthday as YYYY-MM-DD"`
	BackgroundInfo string         `json:"background_info,omitempty" jsonschema:"Free-form background notes"`
	AssignedTo     string         `json:"assigned_to,omitempty" jsonschema:"User id of the owning CRM user"`
	CustomFields   map[string]any `json:"custom_fields,omitempty" jsonschema:"Custom field values keyed by their wire-format names; discover names and formats with get_contact_schema"`
}

// editContactArgs is the input for the "edit_contact" tool.
type editContactArgs struct {
	ContactID      string         `json:"contact_id" jsonschema:"Id of the contact to edit"`
	Name           string         `json:"name,omitempty" jsonschema:"New full name"`
	Email          string         `json:"email,omitempty" jsonschema:"New email address"`
	Phone          string         `json:"phone,omitempty" jsonschema:"New phone number"`
	JobTitle       string         `json:"job_title,omitempty" jsonschema:"New job title"`
	CompanyName    string         `json:"company_name,omitempty" jsonschema:"New company name"`
	Address        string         `json:"address,omitempty" jsonschema:"New postal address"`
	Birthday       string         `json:"birthday,omitempty" jsonschema:"New birthday as YYYY-MM-DD"`
	BackgroundInfo string         `json:"background_info,omitempty" jsonschema:"New background notes"`
	AssignedTo     string         `json:"assigned_to,omitempty" jsonschema:"New owning user id"`
	CustomFields   map[string]any `json:"custom_fields,omitempty" jsonschema:"Custom field values keyed by their wire-format names"`
}

// contactIDArgs is the input for tools that only need a contact id.
type contactIDArgs struct {
	ContactID string `json:"contact_id" jsonschema:"Id of the contact"`
}

// searchContactsArgs is the input for the "search_contacts" tool.
type searchContactsArgs struct {
	SearchTerms string `json:"search_terms" jsonschema:"Free-text search terms (name, email, phone, company)"`
	MaxResults  int    `json:"max_results,omitempty" jsonschema:"Maximum number of results to return (CRM default applies when omitted)"`
	Page        int    `json:"page,omitempty" jsonschema:"1-based result page"`
}

// createCompanyArgs is the input for the "create_company" tool.
type createCompanyArgs struct {
	CompanyName    string         `json:"company_name" jsonschema:"The company's name"`
	Website        string         `json:"website,omitempty" jsonschema:"Website URL"`
	Email          string         `json:"email,omitempty" jsonschema:"Email address"`
	Phone          string         `json:"phone,omitempty" jsonschema:"Phone number"`
	Address        string         `json:"address,omitempty" jsonschema:"Postal address"`
	BackgroundInfo string         `json:"background_info,omitempty" jsonschema:"Free-form background notes"`
	AssignedTo     string         `json:"assigned_to,omitempty" jsonschema:"User id of the owning CRM user"`
	CustomFields   map[string]any `json:"custom_fields,omitempty" jsonschema:"Custom field values keyed by their wire-format names; discover names and formats with get_company_schema"`
}

// editCompanyArgs is the input for the "edit_company" tool.
type editCompanyArgs struct {
	CompanyID      string         `json:"company_id" jsonschema:"Id of the company to edit"`
	CompanyName    string         `json:"company_name,omitempty" jsonschema:"New company name"`
	Website        string         `json:"website,omitempty" jsonschema:"New website URL"`
	Email          string         `json:"email,omitempty" jsonschema:"New email address"`
	Phone          string         `json:"phone,omitempty" jsonschema:"New phone number"`
	Address        string         `json:"address,omitempty" jsonschema:"New postal address"`
	BackgroundInfo string         `json:"background_info,omitempty" jsonschema:"New background notes"`
	AssignedTo     string         `json:"assigned_to,omitempty" jsonschema:"New owning user id"`
	CustomFields   map[string]any `json:"custom_fields,omitempty" jsonschema:"Custom field values keyed by their wire-format names"`
}

// Register adds the contact and company tools to s.
func Register(s *mcpsdk.Server, d tools.Deps) {
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "create_contact",
		Description: "Create a new contact. Use get_contact_schema first when setting custom fields.",
	}, createContact(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "edit_contact",
		Description: "Edit an existing contact. Only the provided fields are changed.",
	}, editContact(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "get_contact",
		Description: "Fetch a single contact with all of its fields.",
	}, getContact(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "delete_contact",
		Description: "Permanently delete a contact. This cannot be undone.",
	}, deleteContact(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "search_contacts",
		Description: "Search contacts and companies by name, email, phone, or company.",
	}, searchContacts(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "create_company",
		Description: "Create a new company record. Use get_company_schema first when setting custom fields.",
	}, createCompany(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "edit_company",
		Description: "Edit an existing company record. Only the provided fields are changed.",
	}, editCompany(d))
}

func createContact(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, createContactArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a createContactArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.Name == "" {
			d.Record(ctx, "create_contact", start, false)
			return tools.FailResult("name is required"), nil, nil
		}

		params := map[string]any{
			"Name":      a.Name,
			"IsCompany": false,
		}
		tools.SetIfNotEmpty(params, "Email", a.Email)
		tools.SetIfNotEmpty(params, "Phone", a.Phone)
		tools.SetIfNotEmpty(params, "Job Title", a.JobTitle)
		tools.SetIfNotEmpty(params, "Company Name", a.CompanyName)
		tools.SetIfNotEmpty(params, "Address", a.Address)
		tools.SetIfNotEmpty(params, "Birthday", a.Birthday)
		tools.SetIfNotEmpty(params, "Background Info", a.BackgroundInfo)
		tools.SetIfNotEmpty(params, "Assigned To", a.AssignedTo)
		tools.MergeCustomFields(params, a.CustomFields)

		payload, err := d.API.Call(ctx, "CreateContact", params)
		if err != nil {
			d.Record(ctx, "create_contact", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "create_contact", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func editContact(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, editContactArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a editContactArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.ContactID == "" {
			d.Record(ctx, "edit_contact", start, false)
			return tools.FailResult("contact_id is required"), nil, nil
		}

		params := map[string]any{"ContactId": a.ContactID}
		tools.SetIfNotEmpty(params, "Name", a.Name)
		tools.SetIfNotEmpty(params, "Email", a.Email)
		tools.SetIfNotEmpty(params, "Phone", a.Phone)
		tools.SetIfNotEmpty(params, "Job Title", a.JobTitle)
		tools.SetIfNotEmpty(params, "Company Name", a.CompanyName)
		tools.SetIfNotEmpty(params, "Address", a.Address)
		tools.SetIfNotEmpty(params, "Birthday", a.Birthday)
		tools.SetIfNotEmpty(params, "Background Info", a.BackgroundInfo)
		tools.SetIfNotEmpty(params, "Assigned To", a.AssignedTo)
		tools.MergeCustomFields(params, a.CustomFields)

		payload, err := d.API.Call(ctx, "EditContact", params)
		if err != nil {
			d.Record(ctx, "edit_contact", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "edit_contact", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func getContact(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, contactIDArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a contactIDArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.ContactID == "" {
			d.Record(ctx, "get_contact", start, false)
			return tools.FailResult("contact_id is required"), nil, nil
		}

		payload, err := d.API.Call(ctx, "GetContact", map[string]any{"ContactId": a.ContactID})
		if err != nil {
			d.Record(ctx, "get_contact", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "get_contact", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func deleteContact(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, contactIDArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a contactIDArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.ContactID == "" {
			d.Record(ctx, "delete_contact", start, false)
			return tools.FailResult("contact_id is required"), nil, nil
		}

		payload, err := d.API.Call(ctx, "DeleteContact", map[string]any{"ContactId": a.ContactID})
		if err != nil {
			d.Record(ctx, "delete_contact", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "delete_contact", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func searchContacts(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, searchContactsArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a searchContactsArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.SearchTerms == "" {
			d.Record(ctx, "search_contacts", start, false)
			return tools.FailResult("search_terms is required"), nil, nil
		}

		params := map[string]any{"SearchTerms": a.SearchTerms}
		if a.MaxResults > 0 {
			params["MaxNumberOfResults"] = a.MaxResults
		}
		if a.Page > 0 {
			params["Page"] = a.Page
		}

		payload, err := d.API.Call(ctx, "SearchContacts", params)
		if err != nil {
			d.Record(ctx, "search_contacts", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "search_contacts", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func createCompany(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, createCompanyArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a createCompanyArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.CompanyName == "" {
			d.Record(ctx, "create_company", start, false)
			return tools.FailResult("company_name is required"), nil, nil
		}

		params := map[string]any{
			"Company Name": a.CompanyName,
			"IsCompany":    true,
		}
		tools.SetIfNotEmpty(params, "Website", a.Website)
		tools.SetIfNotEmpty(params, "Email", a.Email)
		tools.SetIfNotEmpty(params, "Phone", a.Phone)
		tools.SetIfNotEmpty(params, "Address", a.Address)
		tools.SetIfNotEmpty(params, "Background Info", a.BackgroundInfo)
		tools.SetIfNotEmpty(params, "Assigned To", a.AssignedTo)
		tools.MergeCustomFields(params, a.CustomFields)

		payload, err := d.API.Call(ctx, "CreateContact", params)
		if err != nil {
			d.Record(ctx, "create_company", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "create_company", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func editCompany(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, editCompanyArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a editCompanyArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.CompanyID == "" {
			d.Record(ctx, "edit_company", start, false)
			return tools.FailResult("company_id is required"), nil, nil
		}

		params := map[string]any{"ContactId": a.CompanyID}
		tools.SetIfNotEmpty(params, "Company Name", a.CompanyName)
		tools.SetIfNotEmpty(params, "Website", a.Website)
		tools.SetIfNotEmpty(params, "Email", a.Email)
		tools.SetIfNotEmpty(params, "Phone", a.Phone)
		tools.SetIfNotEmpty(params, "Address", a.Address)
		tools.SetIfNotEmpty(params, "Background Info", a.BackgroundInfo)
		tools.SetIfNotEmpty(params, "Assigned To", a.AssignedTo)
		tools.MergeCustomFields(params, a.CustomFields)

		payload, err := d.API.Call(ctx, "EditContact", params)
		if err != nil {
			d.Record(ctx, "edit_company", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "edit_company", start, true)
		return tools.RawResult(payload), nil, nil
	}
}
