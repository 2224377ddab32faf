package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/crmgate/crmgate/internal/lacrm"
	"github.com/crmgate/crmgate/internal/tools"
)

type stubAPI struct {
	calls   []stubCall
	payload json.RawMessage
	err     error
}

type stubCall struct {
	function string
	params   map[string]any
}

func (s *stubAPI) Call(_ context.Context, function string, params map[string]any) (json.RawMessage, error) {
	s.calls = append(s.calls, stubCall{function: function, params: params})
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}

func (s *stubAPI) CallWithFile(_ context.Context, function string, params map[string]any, _ lacrm.File) (json.RawMessage, error) {
	return s.Call(context.Background(), function, params)
}

// TestCreateEventRequiredArgs verifies name and date are enforced locally.
func TestCreateEventRequiredArgs(t *testing.T) {
	t.Parallel()
	api := &stubAPI{}
	handler := createEvent(tools.Deps{API: api})

	res, _, err := handler(context.Background(), nil, createEventArgs{Name: "Kickoff"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected a failure result")
	}
	if len(api.calls) != 0 {
		t.Errorf("CRM calls = %d, want 0", len(api.calls))
	}
}

// TestCreateEventAttachesContacts verifies attached contact ids travel as a
// list under the Contacts wire key.
func TestCreateEventAttachesContacts(t *testing.T) {
	t.Parallel()
	api := &stubAPI{payload: json.RawMessage(`{"EventId":"9"}`)}
	handler := createEvent(tools.Deps{API: api})

	if _, _, err := handler(context.Background(), nil, createEventArgs{
		Name:       "Kickoff",
		Date:       "2026-09-01",
		StartTime:  "14:00",
		ContactIDs: []string{"1", "2"},
	}); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	c := api.calls[0]
	if c.function != "CreateEvent" {
		t.Errorf("function = %q, want CreateEvent", c.function)
	}
	if c.params["Start Time"] != "14:00" {
		t.Errorf("Start Time = %v", c.params["Start Time"])
	}
	ids, ok := c.params["Contacts"].([]string)
	if !ok || len(ids) != 2 {
		t.Errorf("Contacts = %v, want two ids", c.params["Contacts"])
	}
}

// TestListEventsSwitchesFunction verifies contact-scoped listing uses the
// attached-to-contact CRM function while unscoped listing does not.
func TestListEventsSwitchesFunction(t *testing.T) {
	t.Parallel()
	api := &stubAPI{payload: json.RawMessage(`[]`)}
	handler := listEvents(tools.Deps{API: api})

	if _, _, err := handler(context.Background(), nil, listEventsArgs{StartDate: "2026-09-01"}); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if _, _, err := handler(context.Background(), nil, listEventsArgs{ContactID: "42"}); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if api.calls[0].function != "GetEvents" {
		t.Errorf("unscoped function = %q, want GetEvents", api.calls[0].function)
	}
	if _, ok := api.calls[0].params["ContactId"]; ok {
		t.Error("unscoped listing must not send a ContactId")
	}
	if api.calls[1].function != "GetEventsAttachedToContact" {
		t.Errorf("scoped function = %q, want GetEventsAttachedToContact", api.calls[1].function)
	}
	if api.calls[1].params["ContactId"] != "42" {
		t.Errorf("ContactId = %v", api.calls[1].params["ContactId"])
	}
}
