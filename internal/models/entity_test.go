package models

import (
	"reflect"
	"testing"
)

func TestOrderEntities_FullSet(t *testing.T) {
	input := []string{"budgets", "transactions", "account_history", "categories", "accounts"}
	got := OrderEntities(input)
	want := []string{"accounts", "account_history", "categories", "transactions", "budgets"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestOrderEntities_AccountsBeforeHistory(t *testing.T) {
	// Every subset containing both must place accounts first
	subsets := [][]string{
		{"account_history", "accounts"},
		{"budgets", "account_history", "accounts"},
		{"account_history", "transactions", "accounts", "categories"},
	}
	for _, subset := range subsets {
		got := OrderEntities(subset)
		accIdx, histIdx := -1, -1
		for i, e := range got {
			switch e {
			case EntityAccounts:
				accIdx = i
			case EntityAccountHistory:
				histIdx = i
			}
		}
		if accIdx == -1 || histIdx == -1 {
			t.Fatalf("subset %v lost entities: %v", subset, got)
		}
		if accIdx > histIdx {
			t.Errorf("accounts must precede account_history, got %v", got)
		}
	}
}

func TestOrderEntities_DoesNotMutateInput(t *testing.T) {
	input := []string{"budgets", "accounts"}
	OrderEntities(input)
	if !reflect.DeepEqual(input, []string{"budgets", "accounts"}) {
		t.Errorf("input slice was mutated: %v", input)
	}
}

func TestOrderEntities_UnknownSortLast(t *testing.T) {
	got := OrderEntities([]string{"zebras", "budgets", "llamas", "accounts"})
	want := []string{"accounts", "budgets", "zebras", "llamas"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected unknown names last in original order, got %v", got)
	}
}

func TestOrderEntities_Empty(t *testing.T) {
	got := OrderEntities(nil)
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestUnknownEntities(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"all known", []string{"accounts", "budgets"}, nil},
		{"one unknown", []string{"accounts", "payees"}, []string{"payees"}},
		{"all unknown", []string{"x", "y"}, []string{"x", "y"}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnknownEntities(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestEntityTable(t *testing.T) {
	for _, e := range EntityRunOrder {
		table, ok := EntityTable(e)
		if !ok || table == "" {
			t.Errorf("expected a table for entity %s", e)
		}
	}
	if _, ok := EntityTable("payees"); ok {
		t.Error("expected no table for unknown entity")
	}
}

func TestEntityLabels_CoverRegistry(t *testing.T) {
	for _, e := range EntityRunOrder {
		if EntityLabels[e] == "" {
			t.Errorf("missing display label for %s", e)
		}
	}
}
