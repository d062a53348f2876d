package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/domain"
	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/service"
)

// MarketHandler handles HTTP requests for market data endpoints.
type MarketHandler struct {
	marketSvc *service.MarketService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc *service.MarketService) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc}
}

// priceResponse is the JSON response for GET /market/price.
type priceResponse struct {
	CurrentPrice   *float64 `json:"current_price"`
	Window         string   `json:"window"`
	TradesInWindow int      `json:"trades_in_window"`
	LastTradeAt    *string  `json:"last_trade_at"`
}

// GetPrice handles GET /market/price.
func (h *MarketHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	price := h.marketSvc.Price()

	resp := priceResponse{
		Window:         price.Window,
		TradesInWindow: price.TradesInWindow,
	}
	if price.CurrentPrice != nil {
		p := domain.TicksToPrice(*price.CurrentPrice)
		resp.CurrentPrice = &p
	}
	if price.LastTradeAt != nil {
		s := price.LastTradeAt.UTC().Format(time.RFC3339)
		resp.LastTradeAt = &s
	}

	WriteJSON(w, http.StatusOK, resp)
}

// bookLevelResponse is one aggregated price level in the book response.
type bookLevelResponse struct {
	Price         float64 `json:"price"`
	TotalQuantity int64   `json:"total_quantity"`
	OrderCount    int     `json:"order_count"`
}

// bookResponse is the JSON response for GET /market/book.
type bookResponse struct {
	Bids       []bookLevelResponse `json:"bids"`
	Asks       []bookLevelResponse `json:"asks"`
	Spread     *float64            `json:"spread"`
	SnapshotAt string              `json:"snapshot_at"`
}

// GetBook handles GET /market/book with an optional depth query parameter.
func (h *MarketHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	depth := 0
	if d := r.URL.Query().Get("depth"); d != "" {
		v, err := strconv.Atoi(d)
		if err != nil || v < 1 {
			WriteError(w, http.StatusBadRequest, "validation_error", "depth must be a positive integer")
			return
		}
		depth = v
	}

	book, err := h.marketSvc.Book(depth)
	if err != nil {
		mapMarketError(w, err)
		return
	}

	resp := bookResponse{
		Bids:       make([]bookLevelResponse, len(book.Bids)),
		Asks:       make([]bookLevelResponse, len(book.Asks)),
		SnapshotAt: book.SnapshotAt.UTC().Format(time.RFC3339),
	}
	for i, l := range book.Bids {
		resp.Bids[i] = bookLevelResponse{
			Price:         domain.TicksToPrice(l.Price),
			TotalQuantity: l.TotalQuantity,
			OrderCount:    l.OrderCount,
		}
	}
	for i, l := range book.Asks {
		resp.Asks[i] = bookLevelResponse{
			Price:         domain.TicksToPrice(l.Price),
			TotalQuantity: l.TotalQuantity,
			OrderCount:    l.OrderCount,
		}
	}
	if book.Spread != nil {
		s := domain.TicksToPrice(*book.Spread)
		resp.Spread = &s
	}

	WriteJSON(w, http.StatusOK, resp)
}

// quoteLevelResponse is one price level in the quote response.
type quoteLevelResponse struct {
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

// quoteResponse is the JSON response for GET /market/quote.
type quoteResponse struct {
	Side              string               `json:"side"`
	QuantityRequested int64                `json:"quantity_requested"`
	QuantityAvailable int64                `json:"quantity_available"`
	FullyFillable     bool                 `json:"fully_fillable"`
	EstimatedAvgPrice *float64             `json:"estimated_avg_price"`
	EstimatedTotal    *float64             `json:"estimated_total"`
	PriceLevels       []quoteLevelResponse `json:"price_levels"`
	QuotedAt          string               `json:"quoted_at"`
}

// GetQuote handles GET /market/quote with side and quantity query
// parameters.
func (h *MarketHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	side := r.URL.Query().Get("side")

	qtyStr := r.URL.Query().Get("quantity")
	qty, err := strconv.ParseInt(qtyStr, 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "quantity must be a positive integer")
		return
	}

	quote, err := h.marketSvc.Quote(domain.Side(side), qty)
	if err != nil {
		mapMarketError(w, err)
		return
	}

	resp := quoteResponse{
		Side:              string(quote.Side),
		QuantityRequested: quote.QuantityRequested,
		QuantityAvailable: quote.QuantityAvailable,
		FullyFillable:     quote.FullyFillable,
		PriceLevels:       make([]quoteLevelResponse, len(quote.PriceLevels)),
		QuotedAt:          quote.QuotedAt.UTC().Format(time.RFC3339),
	}
	if quote.EstimatedAvgPrice != nil {
		p := domain.TicksToPrice(*quote.EstimatedAvgPrice)
		resp.EstimatedAvgPrice = &p
	}
	if quote.EstimatedTotal != nil {
		p := domain.TicksToPrice(*quote.EstimatedTotal)
		resp.EstimatedTotal = &p
	}
	for i, l := range quote.PriceLevels {
		resp.PriceLevels[i] = quoteLevelResponse{
			Price:    domain.TicksToPrice(l.Price),
			Quantity: l.Quantity,
		}
	}

	WriteJSON(w, http.StatusOK, resp)
}

// tradesResponse is the JSON response for GET /market/trades.
type tradesResponse struct {
	Trades []tradeResponse `json:"trades"`
}

// GetTrades handles GET /market/trades with an optional limit query
// parameter, returning the tape newest first.
func (h *MarketHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "limit must be an integer")
			return
		}
		limit = v
	}

	trades, err := h.marketSvc.Trades(limit)
	if err != nil {
		mapMarketError(w, err)
		return
	}

	resp := tradesResponse{Trades: make([]tradeResponse, len(trades))}
	for i, t := range trades {
		resp.Trades[i] = buildTradeResponse(t)
	}

	WriteJSON(w, http.StatusOK, resp)
}

// mapMarketError maps market query errors to HTTP status codes.
func mapMarketError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "unexpected error")
	}
}
