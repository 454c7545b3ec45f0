package order

import "time"

// Status values an order normally moves through, in informational order.
// The relay stores whatever status text producers send; nothing enforces
// this progression.
const (
	StatusCreated        = "CREATED"
	StatusPreparing      = "PREPARING"
	StatusReadyForPickup = "READY_FOR_PICKUP"
	StatusAssigned       = "ASSIGNED"
	StatusEnRoute        = "EN_ROUTE"
	StatusDelivered      = "DELIVERED"
)

type Order struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customerName"`
	Address      string    `json:"address"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	Status       string    `json:"status"`
	CourierID    string    `json:"courierId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// LocationReport is the latest position report for an order's courier.
// Timestamps are producer-supplied and not checked for monotonicity.
type LocationReport struct {
	OrderID   string   `json:"orderId"`
	CourierID string   `json:"courierId"`
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Heading   *float64 `json:"heading,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
	TS        int64    `json:"ts"`
}
