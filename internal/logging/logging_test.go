package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/apex/log"
)

func TestSetupJSON(t *testing.T) {
	buff := &bytes.Buffer{}
	l := &log.Logger{}
	if err := setup(l, buff, "debug", "json"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	l.WithField("file", "wpan-10-5-200.flowmonitor").Debug("processed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buff.Bytes(), &entry); err != nil {
		t.Fatalf("Expected a JSON record, got %q: %v", buff.String(), err)
	}
	if entry["message"] != "processed" {
		t.Errorf("Expected message 'processed', got %v", entry["message"])
	}
	fields, _ := entry["fields"].(map[string]interface{})
	if fields["file"] != "wpan-10-5-200.flowmonitor" {
		t.Errorf("Expected file field, got %v", entry["fields"])
	}
}

func TestSetupLevelFilters(t *testing.T) {
	buff := &bytes.Buffer{}
	l := &log.Logger{}
	if err := setup(l, buff, "warn", "text"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	l.Info("hidden")
	if buff.Len() != 0 {
		t.Errorf("Expected info to be filtered at warn level, got %q", buff.String())
	}
	l.Warn("shown")
	if buff.Len() == 0 {
		t.Error("Expected warn record to be written")
	}
}

func TestSetupRejectsInvalidValues(t *testing.T) {
	l := &log.Logger{}
	if err := setup(l, &bytes.Buffer{}, "loud", "text"); err == nil {
		t.Error("Expected an error for an unknown level")
	}
	if err := setup(l, &bytes.Buffer{}, "info", "xml"); err == nil {
		t.Error("Expected an error for an unknown format")
	}
}

func TestMakeAccessLogHandler(t *testing.T) {
	h := MakeAccessLogHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/report", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("Expected wrapped handler status, got %d", rec.Code)
	}
}
