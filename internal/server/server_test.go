package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/tally/internal/config"
	"github.com/smallbiznis/tally/internal/handler"
	"github.com/smallbiznis/tally/internal/projection"
	projectiondomain "github.com/smallbiznis/tally/internal/projection/domain"
	reconciledomain "github.com/smallbiznis/tally/internal/reconcile/domain"
	reconcileservice "github.com/smallbiznis/tally/internal/reconcile/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:server_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&projectiondomain.TotalOrdered{},
		&projectiondomain.TotalAuthorized{},
		&projectiondomain.TotalCollected{},
		&reconciledomain.BankTransaction{},
		&reconciledomain.ProductOrder{},
		&reconciledomain.PaymentAuthorization{},
		&reconciledomain.PaymentCollection{},
		&reconciledomain.Relation{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	h := handler.New(handler.Params{
		Projectors: projection.NewProjectors(conn, node),
		Engine: reconcileservice.NewEngine(reconcileservice.Params{
			DB:        conn,
			Log:       zap.NewNop(),
			Relations: reconcileservice.NewRelationRepository(node),
		}),
		Log: zap.NewNop(),
	})

	r := NewEngine()
	NewServer(Params{
		Gin:     r,
		Cfg:     config.Config{},
		DB:      conn,
		Log:     zap.NewNop(),
		Handler: h,
	})
	return r, conn
}

func postEvent(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAcceptEvent(t *testing.T) {
	r, _ := newTestServer(t)

	w := postEvent(t, r, `{
		"type": "bank_transaction_issued",
		"payload": {"transaction_id": "tran_1", "amount": 100, "occurred_on": "2023-02-20T10:00:00Z"}
	}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"status": "accepted"}`, w.Body.String())
}

func TestAcceptEventDuplicateDelivery(t *testing.T) {
	r, _ := newTestServer(t)
	body := `{
		"type": "product_ordered",
		"payload": {
			"order_id": "ord_1", "amount": 100,
			"event_type": "issuance", "installment_type": "yearly",
			"insurance_code": "PRP123",
			"occurred_on": "2023-02-20T10:00:00Z"
		}
	}`

	w := postEvent(t, r, body)
	require.Equal(t, http.StatusAccepted, w.Code)

	w = postEvent(t, r, body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAcceptEventConflictingPayment(t *testing.T) {
	r, _ := newTestServer(t)

	w := postEvent(t, r, `{
		"type": "payment_authorized",
		"payload": {"order_id": "ord_1", "payment_id": "pay_1", "amount": 100, "occurred_on": "2023-02-20T10:00:00Z"}
	}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	w = postEvent(t, r, `{
		"type": "payment_authorized",
		"payload": {"order_id": "ord_1", "payment_id": "pay_2", "amount": 100, "occurred_on": "2023-02-20T10:00:00Z"}
	}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAcceptEventRejectsUnknownType(t *testing.T) {
	r, _ := newTestServer(t)

	w := postEvent(t, r, `{"type": "invoice_settled", "payload": {}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAcceptEventRejectsMalformedEnvelope(t *testing.T) {
	r, _ := newTestServer(t)

	w := postEvent(t, r, `{"payload": {}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTotals(t *testing.T) {
	r, _ := newTestServer(t)
	occurredOn := `"2023-02-20T10:00:00Z"`

	for _, body := range []string{
		fmt.Sprintf(`{"type": "product_ordered", "payload": {"order_id": "ord_1", "amount": 100, "event_type": "issuance", "installment_type": "yearly", "insurance_code": "PRP123", "occurred_on": %s}}`, occurredOn),
		fmt.Sprintf(`{"type": "payment_authorized", "payload": {"order_id": "ord_1", "payment_id": "pay_1", "amount": 100, "occurred_on": %s}}`, occurredOn),
		fmt.Sprintf(`{"type": "payment_collected", "payload": {"transaction_id": "tran_1", "payment_id": "pay_1", "amount": 100, "occurred_on": %s}}`, occurredOn),
		fmt.Sprintf(`{"type": "bank_transaction_issued", "payload": {"transaction_id": "tran_1", "amount": 100, "occurred_on": %s}}`, occurredOn),
	} {
		w := postEvent(t, r, body)
		require.Equal(t, http.StatusAccepted, w.Code, body)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/totals", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_ordered": 100, "total_authorized": 100, "total_collected": 100}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}
