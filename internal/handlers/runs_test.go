package handlers

import (
	"log"
	"net/http/httptest"
	"strings"
	"testing"
)

func testHandlers() *Handlers {
	return &Handlers{Logger: log.Default()}
}

func TestRunsRejectsUnsupportedMethods(t *testing.T) {
	h := testHandlers()

	req := httptest.NewRequest("DELETE", "/runs", nil)
	rr := httptest.NewRecorder()

	h.Runs(rr, req)
	if rr.Code != 405 {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestStartRunRejectsBadJSON(t *testing.T) {
	h := testHandlers()

	req := httptest.NewRequest("POST", "/runs", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()

	h.Runs(rr, req)
	if rr.Code != 400 {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetRunsWithoutMongoFails(t *testing.T) {
	h := testHandlers()

	req := httptest.NewRequest("GET", "/runs", nil)
	rr := httptest.NewRecorder()

	h.Runs(rr, req)
	if rr.Code != 500 {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
