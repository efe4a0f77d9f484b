package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrderPolicies(t *testing.T) {
	orderID := uuid.New()
	keyword := NewOrderPolicy("keyword", []string{"bán", " Sale "})
	flag := NewOrderPolicy("flag", []string{"bán"})

	tests := []struct {
		name        string
		oc          OrderContext
		wantKeyword bool
		wantFlag    bool
	}{
		{"sale reason", OrderContext{Reason: "Bán hàng"}, true, false},
		{"sale keyword mid sentence", OrderContext{Reason: "xuất kho bán online"}, true, false},
		{"second keyword, case folded", OrderContext{Reason: "Flash SALE"}, true, false},
		{"stock count", OrderContext{Reason: "kiểm kê"}, false, false},
		{"no reason", OrderContext{}, false, false},
		{"explicit flag", OrderContext{CreateOrder: true}, true, true},
		{"customer name", OrderContext{CustomerName: "Chị Lan"}, true, true},
		{"customer phone", OrderContext{CustomerPhone: "0901234567"}, true, true},
		{"blank customer name", OrderContext{CustomerName: "   "}, false, false},
		{"email alone is not intent", OrderContext{CustomerEmail: "a@b.c"}, false, false},
		{"sale reason with existing order", OrderContext{Reason: "Bán hàng", OrderID: &orderID}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKeyword, keyword.ShouldCreateOrder(tt.oc), "keyword policy")
			assert.Equal(t, tt.wantFlag, flag.ShouldCreateOrder(tt.oc), "flag policy")
		})
	}
}

func TestNewOrderPolicy_DefaultsToKeyword(t *testing.T) {
	assert.IsType(t, SaleKeywordPolicy{}, NewOrderPolicy("", nil))
	assert.IsType(t, ExplicitFlagPolicy{}, NewOrderPolicy("flag", nil))
}
