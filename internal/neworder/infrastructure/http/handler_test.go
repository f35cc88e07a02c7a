package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oltpworks/wholesale/internal/neworder/application"
	"github.com/oltpworks/wholesale/internal/neworder/domain"
)

type stubStore struct {
	err error
}

func (s *stubStore) ExecuteNewOrder(_ context.Context, req domain.OrderRequest, entry time.Time, _ map[string]string, _ string) (domain.OrderResult, error) {
	if s.err != nil {
		return domain.OrderResult{}, s.err
	}
	return domain.OrderResult{
		WarehouseID: req.WarehouseID,
		DistrictID:  req.DistrictID,
		CustomerID:  req.CustomerID,
		OrderID:     100,
		LineCount:   len(req.Lines),
		EntryTime:   entry,
	}, nil
}

type stubGate struct{ seen map[string]bool }

func (g *stubGate) Seen(_ context.Context, key string) (bool, error) {
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	if g.seen[key] {
		return true, nil
	}
	g.seen[key] = true
	return false, nil
}

func (g *stubGate) Forget(_ context.Context, key string) error {
	delete(g.seen, key)
	return nil
}

func newServer(store *stubStore) http.Handler {
	log := slog.New(slog.DiscardHandler)
	svc := application.NewService(store, &stubGate{})
	return NewHandler(log, svc).Routes()
}

const orderJSON = `{"warehouse_id":1,"district_id":3,"customer_id":42,"lines":[{"item_id":7,"supply_warehouse_id":1,"quantity":5}]}`

func post(h http.Handler, body, requestID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrder(t *testing.T) {
	rec := post(newServer(&stubStore{}), orderJSON, "req-1")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"order_id":100`)
}

func TestCreateOrderDuplicate(t *testing.T) {
	h := newServer(&stubStore{})
	require.Equal(t, http.StatusCreated, post(h, orderJSON, "req-1").Code)
	rec := post(h, orderJSON, "req-1")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "duplicate")
}

func TestCreateOrderStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.NewNotFound("item", "i_id=9999"), http.StatusNotFound},
		{"conflict", domain.NewConflict("district", nil), http.StatusConflict},
		{"timeout", domain.NewTimeout("stock", nil), http.StatusGatewayTimeout},
		{"internal", domain.NewInternal(nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(newServer(&stubStore{err: tc.err}), orderJSON, "")
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestCreateOrderNotFoundNamesKeys(t *testing.T) {
	rec := post(newServer(&stubStore{err: domain.NewNotFound("item", "i_id=9999")}), orderJSON, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"table":"item"`)
	assert.Contains(t, rec.Body.String(), "i_id=9999")
}

func TestCreateOrderInvalidBody(t *testing.T) {
	rec := post(newServer(&stubStore{}), "{not json", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderInvalidInput(t *testing.T) {
	rec := post(newServer(&stubStore{}), `{"warehouse_id":1,"district_id":3,"customer_id":42,"lines":[]}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer(&stubStore{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
