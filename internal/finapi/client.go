// Package finapi is the HTTP client for the upstream financial-aggregation
// API. Every fetch returns records already normalized into storage models;
// pagination is handled internally so callers always see a complete result
// set for the requested window.
package finapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"

	"github.com/fintrackhq/fintrack-sync/internal/models"
)

const (
	dateLayout = "2006-01-02"

	// TransactionsPerPage is the page size used when walking the
	// transactions endpoint.
	TransactionsPerPage = 100

	// DefaultTransactionsLookbackDays bounds a windowless transactions
	// fetch to the last 90 days.
	DefaultTransactionsLookbackDays = 90
)

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client that authenticates every request with the
// given bearer token.
func NewClient(baseURL, token string) *Client {
	return NewClientWithSource(baseURL, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}

// NewClientWithSource creates a client over a dynamic token source, so the
// token can be rotated without rebuilding the client.
func NewClientWithSource(baseURL string, src oauth2.TokenSource) *Client {
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = 60 * time.Second

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

// Validate checks the token against the live API by listing accounts.
func (c *Client) Validate(ctx context.Context) error {
	var resp accountsResponse
	if err := c.get(ctx, "/v1/accounts", nil, &resp); err != nil {
		return fmt.Errorf("token validation failed: %w", err)
	}
	return nil
}

// --- accounts ---------------------------------------------------------------

type namedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type accountPayload struct {
	ID                string           `json:"id"`
	DisplayName       string           `json:"display_name"`
	Type              *namedRef        `json:"type"`
	Subtype           *namedRef        `json:"subtype"`
	Institution       *namedRef        `json:"institution"`
	CurrentBalance    decimal.Decimal  `json:"current_balance"`
	DisplayBalance    *decimal.Decimal `json:"display_balance"`
	IsHidden          bool             `json:"is_hidden"`
	IsAsset           bool             `json:"is_asset"`
	IncludeInNetWorth bool             `json:"include_in_net_worth"`
	UpdatedAt         *time.Time       `json:"updated_at"`
}

type accountsResponse struct {
	Accounts []accountPayload `json:"accounts"`
}

// FetchAccounts fetches all linked accounts. Always a full fetch; the
// account list is small and has no usable watermark.
func (c *Client) FetchAccounts(ctx context.Context) ([]models.Account, error) {
	var resp accountsResponse
	if err := c.get(ctx, "/v1/accounts", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	accounts := make([]models.Account, 0, len(resp.Accounts))
	for _, a := range resp.Accounts {
		acct := models.Account{
			ID:                a.ID,
			Name:              a.DisplayName,
			CurrentBalance:    a.CurrentBalance,
			IsHidden:          a.IsHidden,
			IsAsset:           a.IsAsset,
			IncludeInNetWorth: a.IncludeInNetWorth,
			LastUpdated:       a.UpdatedAt,
		}
		if a.Type != nil {
			acct.Type = &a.Type.Name
		}
		if a.Subtype != nil {
			acct.Subtype = &a.Subtype.Name
		}
		if a.Institution != nil {
			acct.Institution = &a.Institution.Name
		}
		if a.DisplayBalance != nil {
			acct.DisplayBalance = *a.DisplayBalance
		} else {
			acct.DisplayBalance = a.CurrentBalance
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// --- account history --------------------------------------------------------

type historyPoint struct {
	Date    string          `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

type historyResponse struct {
	History []historyPoint `json:"history"`
}

// FetchAccountHistory fetches daily balance history for one account. When
// after is set, only points strictly after that date are returned.
func (c *Client) FetchAccountHistory(ctx context.Context, accountID string, after *time.Time) ([]models.BalancePoint, error) {
	params := url.Values{}
	if after != nil {
		params.Set("after", after.Format(dateLayout))
	}

	var resp historyResponse
	path := fmt.Sprintf("/v1/accounts/%s/history", url.PathEscape(accountID))
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch history for account %s: %w", accountID, err)
	}

	points := make([]models.BalancePoint, 0, len(resp.History))
	for _, h := range resp.History {
		date, err := time.Parse(dateLayout, h.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid history date %q for account %s: %w", h.Date, accountID, err)
		}
		// Guard against servers that ignore the after bound
		if after != nil && !date.After(*after) {
			continue
		}
		points = append(points, models.BalancePoint{
			AccountID: accountID,
			Date:      date,
			Balance:   h.Balance,
		})
	}
	return points, nil
}

// --- categories -------------------------------------------------------------

type categoryPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"group"`
}

type categoriesResponse struct {
	Categories []categoryPayload `json:"categories"`
}

// FetchCategories fetches all transaction categories. Always a full fetch.
func (c *Client) FetchCategories(ctx context.Context) ([]models.Category, error) {
	var resp categoriesResponse
	if err := c.get(ctx, "/v1/categories", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	categories := make([]models.Category, 0, len(resp.Categories))
	for _, cat := range resp.Categories {
		m := models.Category{ID: cat.ID, Name: cat.Name}
		if cat.Group != nil {
			m.GroupID = &cat.Group.ID
			m.GroupName = &cat.Group.Name
			m.GroupType = &cat.Group.Type
		}
		categories = append(categories, m)
	}
	return categories, nil
}

// --- transactions -----------------------------------------------------------

type transactionPayload struct {
	ID       string          `json:"id"`
	Date     string          `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Merchant *namedRef       `json:"merchant"`
	Category *struct {
		ID    string    `json:"id"`
		Name  string    `json:"name"`
		Group *namedRef `json:"group"`
	} `json:"category"`
	Account         *namedRef  `json:"account"`
	Pending         bool       `json:"pending"`
	IsRecurring     bool       `json:"is_recurring"`
	Notes           *string    `json:"notes"`
	HideFromReports bool       `json:"hide_from_reports"`
	CreatedAt       *time.Time `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`
}

type transactionsResponse struct {
	Transactions struct {
		Results    []transactionPayload `json:"results"`
		TotalCount int                  `json:"total_count"`
	} `json:"transactions"`
}

// FetchTransactions fetches all transactions in [start, end], paginating
// until the full window is retrieved. A nil start defaults to the last 90
// days, a nil end to today.
func (c *Client) FetchTransactions(ctx context.Context, start, end *time.Time) ([]models.Transaction, error) {
	now := time.Now().UTC()
	startDate := now.AddDate(0, 0, -DefaultTransactionsLookbackDays)
	if start != nil {
		startDate = *start
	}
	endDate := now
	if end != nil {
		endDate = *end
	}

	var all []models.Transaction
	offset := 0

	for {
		params := url.Values{}
		params.Set("start_date", startDate.Format(dateLayout))
		params.Set("end_date", endDate.Format(dateLayout))
		params.Set("limit", strconv.Itoa(TransactionsPerPage))
		params.Set("offset", strconv.Itoa(offset))

		var resp transactionsResponse
		if err := c.get(ctx, "/v1/transactions", params, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch transactions: %w", err)
		}

		batch := resp.Transactions.Results
		for _, t := range batch {
			m, err := mapTransaction(t)
			if err != nil {
				return nil, err
			}
			all = append(all, m)
		}

		offset += len(batch)
		if offset >= resp.Transactions.TotalCount || len(batch) == 0 {
			break
		}
	}

	return all, nil
}

func mapTransaction(t transactionPayload) (models.Transaction, error) {
	date, err := time.Parse(dateLayout, t.Date)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid transaction date %q: %w", t.Date, err)
	}

	m := models.Transaction{
		ID:              t.ID,
		Date:            date,
		Amount:          t.Amount,
		IsPending:       t.Pending,
		IsRecurring:     t.IsRecurring,
		Notes:           t.Notes,
		HideFromReports: t.HideFromReports,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	if t.Merchant != nil {
		m.MerchantName = &t.Merchant.Name
	}
	if t.Category != nil {
		m.CategoryID = &t.Category.ID
		m.CategoryName = &t.Category.Name
		if t.Category.Group != nil {
			m.CategoryGroup = &t.Category.Group.Name
		}
	}
	if t.Account != nil {
		m.AccountID = &t.Account.ID
		m.AccountName = &t.Account.Name
	}
	return m, nil
}

// --- budgets ----------------------------------------------------------------

type budgetsResponse struct {
	BudgetData struct {
		MonthlyAmountsByCategory []struct {
			Category       namedRef `json:"category"`
			MonthlyAmounts []struct {
				Month         string          `json:"month"`
				PlannedAmount decimal.Decimal `json:"planned_amount"`
				ActualAmount  decimal.Decimal `json:"actual_amount"`
			} `json:"monthly_amounts"`
		} `json:"monthly_amounts_by_category"`
	} `json:"budget_data"`
}

// FetchBudgets fetches budget-vs-actual rows for every month in
// [startMonth, endMonth], flattened and with variance precomputed.
func (c *Client) FetchBudgets(ctx context.Context, startMonth, endMonth time.Time) ([]models.Budget, error) {
	params := url.Values{}
	params.Set("start_month", startMonth.Format(dateLayout))
	params.Set("end_month", endMonth.Format(dateLayout))

	var resp budgetsResponse
	if err := c.get(ctx, "/v1/budgets", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch budgets: %w", err)
	}

	var rows []models.Budget
	for _, item := range resp.BudgetData.MonthlyAmountsByCategory {
		if item.Category.ID == "" {
			continue
		}
		for _, ma := range item.MonthlyAmounts {
			month, err := time.Parse(dateLayout, ma.Month)
			if err != nil {
				return nil, fmt.Errorf("invalid budget month %q: %w", ma.Month, err)
			}
			rows = append(rows, models.Budget{
				CategoryID:     item.Category.ID,
				Month:          month,
				BudgetedAmount: ma.PlannedAmount,
				ActualAmount:   ma.ActualAmount,
				Variance:       ma.PlannedAmount.Sub(ma.ActualAmount),
			})
		}
	}
	return rows, nil
}

// --- transport --------------------------------------------------------------

func (c *Client) get(ctx context.Context, path string, params url.Values, dest interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
