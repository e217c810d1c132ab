package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordApprovalCast(t *testing.T) {
	before := testutil.ToFloat64(approvalCasts.WithLabelValues("duplicate"))
	RecordApprovalCast(true)
	RecordApprovalCast(false)
	after := testutil.ToFloat64(approvalCasts.WithLabelValues("duplicate"))
	if after-before != 1 {
		t.Errorf("duplicate casts: got delta %v, want 1", after-before)
	}
}

func TestWebSocketGauge(t *testing.T) {
	before := testutil.ToFloat64(wsClients)
	WebSocketConnected()
	WebSocketConnected()
	WebSocketDisconnected()
	if got := testutil.ToFloat64(wsClients) - before; got != 1 {
		t.Errorf("gauge delta: got %v, want 1", got)
	}
	WebSocketDisconnected()
}

func TestHandlerServesRegistry(t *testing.T) {
	RecordExpenseApproved()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "splitvote_ledger_expenses_approved_total") {
		t.Error("expected expenses_approved_total in metrics output")
	}
}
