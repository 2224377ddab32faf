// Package files provides the MCP tools for file attachments on CRM records.
//
// "upload_file" reads a file from the local filesystem and attaches it to a
// contact through the CRM's multipart endpoint. Paths that look like
// credentials or system files are refused before anything is read.
package files

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/crmgate/crmgate/internal/lacrm"
	"github.com/crmgate/crmgate/internal/tools"
)

// maxUploadBytes caps how much of the local filesystem a single tool call
// may ship to the CRM.
const maxUploadBytes = 20 << 20

// deniedPathParts are path elements that mark a file as off-limits for
// upload, regardless of where in the path they appear.
var deniedPathParts = []string{
	".ssh",
	".aws",
	".gnupg",
	".config",
}

// deniedPrefixes are directory trees that are never readable through the
// upload tool.
var deniedPrefixes = []string{
	"/etc/",
	"/proc/",
	"/sys/",
	"/dev/",
}

type uploadFileArgs struct {
	ContactID string `json:"contact_id" jsonschema:"Id of the contact to attach the file to"`
	Path      string `json:"path" jsonschema:"Absolute path of the local file to upload"`
	Name      string `json:"name,omitempty" jsonschema:"Filename to store in the CRM; defaults to the local filename"`
}

type listFilesArgs struct {
	ContactID string `json:"contact_id" jsonschema:"Id of the contact whose files to list"`
}

// Register adds the file tools to s.
func Register(s *mcpsdk.Server, d tools.Deps) {
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "upload_file",
		Description: "Upload a local file and attach it to a contact or company.",
	}, uploadFile(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "list_files",
		Description: "List the files attached to a contact or company.",
	}, listFiles(d))
}

// validatePath rejects paths pointing at credentials or system internals.
func validatePath(path string) error {
	if !filepath.IsAbs(path) {
		return &lacrm.ValidationError{Message: "path must be absolute"}
	}
	clean := filepath.Clean(path)
	for _, prefix := range deniedPrefixes {
		if strings.HasPrefix(clean, prefix) {
			return &lacrm.ValidationError{Message: fmt.Sprintf("refusing to read from %s", prefix)}
		}
	}
	for _, part := range strings.Split(clean, string(filepath.Separator)) {
		for _, denied := range deniedPathParts {
			if part == denied {
				return &lacrm.ValidationError{Message: fmt.Sprintf("refusing to read %s directories", denied)}
			}
		}
	}
	return nil
}

func uploadFile(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, uploadFileArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a uploadFileArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.ContactID == "" || a.Path == "" {
			d.Record(ctx, "upload_file", start, false)
			return tools.FailResult("contact_id and path are required"), nil, nil
		}
		if err := validatePath(a.Path); err != nil {
			d.Record(ctx, "upload_file", start, false)
			return tools.ErrorResult(err), nil, nil
		}

		info, err := os.Stat(a.Path)
		if err != nil {
			d.Record(ctx, "upload_file", start, false)
			return tools.FailResult(fmt.Sprintf("cannot read %s: %v", a.Path, err)), nil, nil
		}
		if info.IsDir() {
			d.Record(ctx, "upload_file", start, false)
			return tools.FailResult(fmt.Sprintf("%s is a directory", a.Path)), nil, nil
		}
		if info.Size() > maxUploadBytes {
			d.Record(ctx, "upload_file", start, false)
			return tools.FailResult(fmt.Sprintf("file exceeds the %d MiB upload limit", maxUploadBytes>>20)), nil, nil
		}

		content, err := os.ReadFile(a.Path)
		if err != nil {
			d.Record(ctx, "upload_file", start, false)
			return tools.FailResult(fmt.Sprintf("cannot read %s: %v", a.Path, err)), nil, nil
		}

		name := a.Name
		if name == "" {
			name = filepath.Base(a.Path)
		}
		mimeType := mime.TypeByExtension(filepath.Ext(name))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		payload, err := d.API.CallWithFile(ctx, "CreateFile", map[string]any{"ContactId": a.ContactID}, lacrm.File{
			Name:     name,
			Content:  content,
			MIMEType: mimeType,
		})
		if err != nil {
			d.Record(ctx, "upload_file", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "upload_file", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func listFiles(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, listFilesArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a listFilesArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.ContactID == "" {
			d.Record(ctx, "list_files", start, false)
			return tools.FailResult("contact_id is required"), nil, nil
		}

		payload, err := d.API.Call(ctx, "GetFilesAttachedToContact", map[string]any{"ContactId": a.ContactID})
		if err != nil {
			d.Record(ctx, "list_files", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "list_files", start, true)
		return tools.RawResult(payload), nil, nil
	}
}
