package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"inventory_api/internal/catalog"
	"inventory_api/internal/config"
	"inventory_api/internal/database"
	"inventory_api/internal/sales"
)

func InitRoutesTests(t *testing.T) (*gin.Engine, *database.DB) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	db, err := database.New(&config.Config{DBDriver: config.DriverSQLite, DatabaseURL: ":memory:", MaxOpenConns: 1}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(Models()...))

	router := gin.New()
	InitRoutes(router, db, logger)
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(raw)
	} else {
		buf = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createShirt(t *testing.T, router *gin.Engine) {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/products", map[string]any{
		"productId": "P1",
		"name":      "Linen shirt",
		"price":     20.00,
		"sizes": []map[string]any{
			{"size": "M", "stockQuantity": 5},
			{"size": "L", "stockQuantity": 2},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func stockOf(t *testing.T, router *gin.Engine, size string) int {
	t.Helper()

	w := doJSON(t, router, http.MethodGet, "/products/P1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var p catalog.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	ps := p.FindSize(size)
	require.NotNil(t, ps, "size %s missing", size)
	return ps.StockQuantity
}

// TestSalesHappyPath_FullFlow exercises POST /sales -> GET /sales -> GET /sales/:id.
func TestSalesHappyPath_FullFlow(t *testing.T) {
	router, _ := InitRoutesTests(t)
	createShirt(t, router)

	var saleID string

	t.Run("POST_CreateSale", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/sales", map[string]any{
			"items":         []map[string]any{{"productId": "P1", "size": "M", "quantity": 3}},
			"paymentMethod": "cash",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created sales.Sale
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.NotEmpty(t, created.SaleID, "Expected sale ID to be generated")
		assert.Equal(t, "cash", created.PaymentMethod)
		assert.True(t, decimal.NewFromInt(60).Equal(created.TotalAmount), "total was %s", created.TotalAmount)
		require.Len(t, created.SaleItems, 1)
		assert.Equal(t, 3, created.SaleItems[0].Quantity)

		saleID = created.SaleID
	})

	if saleID == "" {
		t.Fatal("Sale ID was not successfully generated in POST_CreateSale step.")
	}

	assert.Equal(t, 2, stockOf(t, router, "M"))

	t.Run("GET_Sales", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/sales", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var list []sales.Sale
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, saleID, list[0].SaleID)
		require.Len(t, list[0].SaleItems, 1)
		require.NotNil(t, list[0].SaleItems[0].Product, "product must be attached to each item")
		assert.Equal(t, "Linen shirt", list[0].SaleItems[0].Product.Name)

		again := doJSON(t, router, http.MethodGet, "/sales", nil)
		assert.Equal(t, w.Body.String(), again.Body.String())
	})

	t.Run("GET_SaleByID", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/sales/"+saleID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		missing := doJSON(t, router, http.MethodGet, "/sales/does-not-exist", nil)
		assert.Equal(t, http.StatusNotFound, missing.Code)
	})
}

func TestCreateSale_ErrorStatuses(t *testing.T) {
	cases := map[string]struct {
		body   any
		status int
	}{
		"malformed JSON":     {body: "not an object", status: http.StatusBadRequest},
		"no items":           {body: map[string]any{"items": []any{}, "paymentMethod": "cash"}, status: http.StatusBadRequest},
		"no payment method":  {body: map[string]any{"items": []map[string]any{{"productId": "P1", "size": "M", "quantity": 1}}}, status: http.StatusBadRequest},
		"zero quantity":      {body: map[string]any{"items": []map[string]any{{"productId": "P1", "size": "M", "quantity": 0}}, "paymentMethod": "cash"}, status: http.StatusBadRequest},
		"unknown product":    {body: map[string]any{"items": []map[string]any{{"productId": "UNKNOWN", "size": "M", "quantity": 1}}, "paymentMethod": "cash"}, status: http.StatusNotFound},
		"unknown size":       {body: map[string]any{"items": []map[string]any{{"productId": "P1", "size": "XXL", "quantity": 1}}, "paymentMethod": "cash"}, status: http.StatusConflict},
		"insufficient stock": {body: map[string]any{"items": []map[string]any{{"productId": "P1", "size": "M", "quantity": 10}}, "paymentMethod": "cash"}, status: http.StatusConflict},
		"partial failure": {body: map[string]any{"items": []map[string]any{
			{"productId": "P1", "size": "M", "quantity": 2},
			{"productId": "P1", "size": "L", "quantity": 3},
		}, "paymentMethod": "cash"}, status: http.StatusConflict},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			router, _ := InitRoutesTests(t)
			createShirt(t, router)

			w := doJSON(t, router, http.MethodPost, "/sales", tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])

			assert.Equal(t, 5, stockOf(t, router, "M"))
			assert.Equal(t, 2, stockOf(t, router, "L"))

			list := doJSON(t, router, http.MethodGet, "/sales", nil)
			assert.JSONEq(t, `[]`, list.Body.String())
		})
	}
}

func TestProductRoutes(t *testing.T) {
	router, _ := InitRoutesTests(t)
	createShirt(t, router)

	dup := doJSON(t, router, http.MethodPost, "/products", map[string]any{"productId": "P1", "name": "Again", "price": 1})
	assert.Equal(t, http.StatusConflict, dup.Code)

	invalid := doJSON(t, router, http.MethodPost, "/products", map[string]any{"productId": "P9", "name": ""})
	assert.Equal(t, http.StatusBadRequest, invalid.Code)

	search := doJSON(t, router, http.MethodGet, "/products?search=LINEN", nil)
	require.Equal(t, http.StatusOK, search.Code)
	var found []catalog.Product
	require.NoError(t, json.Unmarshal(search.Body.Bytes(), &found))
	assert.Len(t, found, 1)

	restock := doJSON(t, router, http.MethodPatch, "/products/P1/stock", map[string]any{"size": "M", "delta": 4})
	require.Equal(t, http.StatusOK, restock.Code, restock.Body.String())
	assert.Equal(t, 9, stockOf(t, router, "M"))

	overdraw := doJSON(t, router, http.MethodPatch, "/products/P1/stock", map[string]any{"size": "L", "delta": -3})
	assert.Equal(t, http.StatusConflict, overdraw.Code)

	update := doJSON(t, router, http.MethodPut, "/products/P1", map[string]any{"name": "Linen shirt", "price": "22.50"})
	require.Equal(t, http.StatusOK, update.Code, update.Body.String())

	sale := doJSON(t, router, http.MethodPost, "/sales", map[string]any{
		"items":         []map[string]any{{"productId": "P1", "size": "M", "quantity": 2}},
		"paymentMethod": "card",
	})
	require.Equal(t, http.StatusCreated, sale.Code)
	var created sales.Sale
	require.NoError(t, json.Unmarshal(sale.Body.Bytes(), &created))
	assert.True(t, decimal.RequireFromString("45").Equal(created.TotalAmount), "sale uses the current price")

	missing := doJSON(t, router, http.MethodGet, "/products/P404", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	other := doJSON(t, router, http.MethodPost, "/products", map[string]any{"productId": "P2", "name": "Scarf", "price": 5})
	require.Equal(t, http.StatusCreated, other.Code)
	del := doJSON(t, router, http.MethodDelete, "/products/P2", nil)
	assert.Equal(t, http.StatusNoContent, del.Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodDelete, "/products/P2", nil).Code)
}

func TestBranchRoutes(t *testing.T) {
	router, _ := InitRoutesTests(t)

	w := doJSON(t, router, http.MethodPost, "/branches", map[string]any{"name": "Centro", "location": "Main St 1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var branch catalog.Branch
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &branch))
	require.NotEmpty(t, branch.BranchID)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodPost, "/branches", map[string]any{"name": "x"}).Code)

	got := doJSON(t, router, http.MethodGet, "/branches/"+branch.BranchID, nil)
	assert.Equal(t, http.StatusOK, got.Code)

	upd := doJSON(t, router, http.MethodPut, "/branches/"+branch.BranchID, map[string]any{"name": "Centro", "location": "Main St 2"})
	assert.Equal(t, http.StatusOK, upd.Code)

	list := doJSON(t, router, http.MethodGet, "/branches", nil)
	var branches []catalog.Branch
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &branches))
	require.Len(t, branches, 1)
	assert.Equal(t, "Main St 2", branches[0].Location)

	assert.Equal(t, http.StatusOK, doJSON(t, router, http.MethodDelete, "/branches/"+branch.BranchID, nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodGet, "/branches/"+branch.BranchID, nil).Code)
}

func TestOperationalRoutes(t *testing.T) {
	router, db := InitRoutesTests(t)

	ping := doJSON(t, router, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, ping.Code)
	assert.JSONEq(t, `{"message":"pong"}`, ping.Body.String())

	assert.Equal(t, http.StatusOK, doJSON(t, router, http.MethodGet, "/health", nil).Code)

	preflight := doJSON(t, router, http.MethodOptions, "/sales", nil)
	assert.Equal(t, http.StatusNoContent, preflight.Code)
	assert.Equal(t, "*", preflight.Header().Get("Access-Control-Allow-Origin"))

	require.NoError(t, db.Close())
	assert.Equal(t, http.StatusServiceUnavailable, doJSON(t, router, http.MethodGet, "/health", nil).Code)
}
