package finapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token")
}

func TestClient_SendsBearerToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"accounts": []}`))
	})

	require.NoError(t, client.Validate(context.Background()))
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestClient_Validate_RejectsErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	err := client.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_FetchAccounts_MapsNestedRefs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts", r.URL.Path)
		w.Write([]byte(`{
			"accounts": [
				{
					"id": "acct-1",
					"display_name": "Everyday Checking",
					"type": {"id": "t1", "name": "depository"},
					"subtype": {"id": "s1", "name": "checking"},
					"institution": {"id": "i1", "name": "First National"},
					"current_balance": "1250.55",
					"is_asset": true,
					"include_in_net_worth": true
				},
				{
					"id": "acct-2",
					"display_name": "Orphan",
					"current_balance": "10"
				}
			]
		}`))
	})

	accounts, err := client.FetchAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	first := accounts[0]
	assert.Equal(t, "acct-1", first.ID)
	assert.Equal(t, "Everyday Checking", first.Name)
	require.NotNil(t, first.Type)
	assert.Equal(t, "depository", *first.Type)
	require.NotNil(t, first.Institution)
	assert.Equal(t, "First National", *first.Institution)
	assert.Equal(t, "1250.55", first.CurrentBalance.String())
	// display_balance falls back to current_balance when absent
	assert.True(t, first.DisplayBalance.Equal(first.CurrentBalance))

	second := accounts[1]
	assert.Nil(t, second.Type)
	assert.Nil(t, second.Institution)
}

func TestClient_FetchAccountHistory_PassesAfterBound(t *testing.T) {
	var gotAfter string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts/acct-1/history", r.URL.Path)
		gotAfter = r.URL.Query().Get("after")
		w.Write([]byte(`{
			"history": [
				{"date": "2025-03-01", "balance": "100"},
				{"date": "2025-03-02", "balance": "110"},
				{"date": "2025-03-03", "balance": "120"}
			]
		}`))
	})

	after := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	points, err := client.FetchAccountHistory(context.Background(), "acct-1", &after)
	require.NoError(t, err)

	assert.Equal(t, "2025-03-02", gotAfter)

	// Points at or before the bound are dropped even if the server returns them
	require.Len(t, points, 1)
	assert.Equal(t, "acct-1", points[0].AccountID)
	assert.Equal(t, "2025-03-03", points[0].Date.Format("2006-01-02"))
}

func TestClient_FetchAccountHistory_NoBoundReturnsAll(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("after"))
		w.Write([]byte(`{
			"history": [
				{"date": "2025-03-01", "balance": "100"},
				{"date": "2025-03-02", "balance": "110"}
			]
		}`))
	})

	points, err := client.FetchAccountHistory(context.Background(), "acct-1", nil)
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestClient_FetchCategories(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/categories", r.URL.Path)
		w.Write([]byte(`{
			"categories": [
				{"id": "cat-1", "name": "Groceries", "group": {"id": "g1", "name": "Food", "type": "expense"}},
				{"id": "cat-2", "name": "Uncategorized"}
			]
		}`))
	})

	categories, err := client.FetchCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)

	assert.Equal(t, "Groceries", categories[0].Name)
	require.NotNil(t, categories[0].GroupName)
	assert.Equal(t, "Food", *categories[0].GroupName)
	assert.Nil(t, categories[1].GroupID)
}

func TestClient_FetchTransactions_PaginatesUntilComplete(t *testing.T) {
	const total = 150
	var requests int

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/v1/transactions", r.URL.Path)
		assert.Equal(t, strconv.Itoa(TransactionsPerPage), r.URL.Query().Get("limit"))

		offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		require.NoError(t, err)

		n := TransactionsPerPage
		if offset+n > total {
			n = total - offset
		}

		results := make([]map[string]interface{}, 0, n)
		for i := 0; i < n; i++ {
			results = append(results, map[string]interface{}{
				"id":     "txn-" + strconv.Itoa(offset+i),
				"date":   "2025-03-01",
				"amount": "-12.50",
			})
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"transactions": map[string]interface{}{
				"results":     results,
				"total_count": total,
			},
		})
	})

	txns, err := client.FetchTransactions(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Len(t, txns, total)
	assert.Equal(t, 2, requests)
	assert.Equal(t, "txn-0", txns[0].ID)
	assert.Equal(t, "txn-149", txns[total-1].ID)
}

func TestClient_FetchTransactions_WindowParams(t *testing.T) {
	var gotStart, gotEnd string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("start_date")
		gotEnd = r.URL.Query().Get("end_date")
		w.Write([]byte(`{"transactions": {"results": [], "total_count": 0}}`))
	})

	start := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	_, err := client.FetchTransactions(context.Background(), &start, &end)
	require.NoError(t, err)

	assert.Equal(t, "2025-01-07", gotStart)
	assert.Equal(t, "2025-01-31", gotEnd)
}

func TestClient_FetchBudgets_FlattensAndComputesVariance(t *testing.T) {
	var gotStart, gotEnd string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/budgets", r.URL.Path)
		gotStart = r.URL.Query().Get("start_month")
		gotEnd = r.URL.Query().Get("end_month")
		w.Write([]byte(`{
			"budget_data": {
				"monthly_amounts_by_category": [
					{
						"category": {"id": "cat-1", "name": "Groceries"},
						"monthly_amounts": [
							{"month": "2025-07-01", "planned_amount": "500", "actual_amount": "423.10"},
							{"month": "2025-08-01", "planned_amount": "500", "actual_amount": "611.75"}
						]
					},
					{
						"category": {"id": "", "name": "ghost"},
						"monthly_amounts": [
							{"month": "2025-08-01", "planned_amount": "1", "actual_amount": "1"}
						]
					}
				]
			}
		}`))
	})

	start := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	rows, err := client.FetchBudgets(context.Background(), start, end)
	require.NoError(t, err)

	assert.Equal(t, "2024-08-01", gotStart)
	assert.Equal(t, "2025-08-01", gotEnd)

	// Category rows without an id are dropped
	require.Len(t, rows, 2)
	assert.Equal(t, "cat-1", rows[0].CategoryID)
	assert.Equal(t, "76.9", rows[0].Variance.String())
	assert.Equal(t, "-111.75", rows[1].Variance.String())
}

func TestClient_ErrorIncludesBodySnippet(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	})

	_, err := client.FetchCategories(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream exploded")
}
