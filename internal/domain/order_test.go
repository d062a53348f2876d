package domain

import (
	"testing"
	"time"
)

func TestOrder_IsBuy(t *testing.T) {
	buy := &Order{Side: SideBuy}
	sell := &Order{Side: SideSell}

	if !buy.IsBuy() {
		t.Error("expected buy order to report IsBuy")
	}
	if sell.IsBuy() {
		t.Error("expected sell order to not report IsBuy")
	}
}

func TestOrder_AveragePrice_NoTrades(t *testing.T) {
	o := &Order{OrderID: "o1", Quantity: 10, RemainingQuantity: 10}

	if _, ok := o.AveragePrice(); ok {
		t.Error("expected no average price for an order with no trades")
	}
}

func TestOrder_AveragePrice_SingleTrade(t *testing.T) {
	o := &Order{
		OrderID:        "o1",
		Quantity:       10,
		FilledQuantity: 10,
		Trades: []*Trade{
			{TradeID: "t1", Price: 10550, Quantity: 10, ExecutedAt: time.Now()},
		},
	}

	avg, ok := o.AveragePrice()
	if !ok {
		t.Fatal("expected average price to exist")
	}
	if avg != 10550 {
		t.Errorf("expected average price 10550, got %d", avg)
	}
}

func TestOrder_AveragePrice_WeightedAcrossLevels(t *testing.T) {
	// 100 @ 105.50 and 50 @ 106.00 → (1055000 + 530000) / 150 = 10566.
	o := &Order{
		OrderID:        "o1",
		Quantity:       150,
		FilledQuantity: 150,
		Trades: []*Trade{
			{TradeID: "t1", Price: 10550, Quantity: 100},
			{TradeID: "t2", Price: 10600, Quantity: 50},
		},
	}

	avg, ok := o.AveragePrice()
	if !ok {
		t.Fatal("expected average price to exist")
	}
	if avg != 10566 {
		t.Errorf("expected average price 10566, got %d", avg)
	}
}
