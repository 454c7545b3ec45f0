// Package dispatch applies inbound relay events to shared order state and
// fans the results out to the interested rooms.
package dispatch

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/feed"
	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/hub"
	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/order"
)

// Inbound event names.
const (
	EventCourierJoin    = "courier:join"
	EventOrderWatch     = "order:watch"
	EventOrderCreate    = "order:create"
	EventOrderStatus    = "order:status"
	EventOrderAssign    = "order:assign"
	EventLocationUpdate = "location:update"
	EventOrderDelete    = "order:delete"
)

// Outbound event names.
const (
	EventOrdersSnapshot = "orders:snapshot"
	EventOrderCreated   = "order:created"
	EventOrderUpdated   = "order:updated"
	EventOrderAssigned  = "order:assigned"
	EventOrderDeleted   = "order:deleted"
	EventLocationDelta  = "location:delta"
)

// Dispatcher is the per-event state machine. One mutex covers every mutation
// of the order store and the location cache plus the resulting emits, so each
// event is applied atomically relative to every other event.
type Dispatcher struct {
	mu        sync.Mutex
	orders    *order.Store
	locations *order.LocationCache
	rooms     *hub.Hub
	feed      *feed.Feed
	logger    *zap.Logger
}

func New(orders *order.Store, locations *order.LocationCache, rooms *hub.Hub, f *feed.Feed, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		orders:    orders,
		locations: locations,
		rooms:     rooms,
		feed:      f,
		logger:    logger,
	}
}

// HandleConnect seeds room membership for the new connection. Admins join the
// admins room and immediately get a snapshot consistent with the store at
// connect time; everyone else declares interest later via join/watch events.
func (d *Dispatcher) HandleConnect(c hub.Conn, role string) {
	if role != "admin" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.rooms.Join(c, hub.Admins())
	c.Send(EventOrdersSnapshot, d.orders.List())
}

// HandleDisconnect releases room membership; that is the only per-connection
// state the relay keeps.
func (d *Dispatcher) HandleDisconnect(c hub.Conn) {
	d.rooms.LeaveAll(c)
}

// HandleEvent routes one inbound frame. Any event that fails its
// preconditions is dropped silently: counted and debug-logged, but nothing
// goes back to the sender and the connection stays up.
func (d *Dispatcher) HandleEvent(c hub.Conn, event string, data json.RawMessage) {
	metrics.EventsReceivedTotal.WithLabelValues(event).Inc()

	d.mu.Lock()
	defer d.mu.Unlock()

	switch event {
	case EventCourierJoin:
		d.courierJoin(c, data)
	case EventOrderWatch:
		d.orderWatch(c, data)
	case EventOrderCreate:
		d.orderCreate(data)
	case EventOrderStatus:
		d.orderStatus(data)
	case EventOrderAssign:
		d.orderAssign(data)
	case EventLocationUpdate:
		d.locationUpdate(data)
	case EventOrderDelete:
		d.orderDelete(data)
	default:
		d.drop(event, "unknown_event")
	}
}

func (d *Dispatcher) courierJoin(c hub.Conn, data json.RawMessage) {
	var courierID string
	if err := json.Unmarshal(data, &courierID); err != nil || courierID == "" {
		d.drop(EventCourierJoin, "bad_courier_id")
		return
	}
	d.rooms.Join(c, hub.Courier(courierID))
}

func (d *Dispatcher) orderWatch(c hub.Conn, data json.RawMessage) {
	var orderID string
	if err := json.Unmarshal(data, &orderID); err != nil || orderID == "" {
		d.drop(EventOrderWatch, "bad_order_id")
		return
	}

	d.rooms.Join(c, hub.OrderWatch(orderID))

	// Late watchers are backfilled with the latest known position.
	if report, found := d.locations.Get(orderID); found {
		c.Send(EventLocationDelta, report)
	}
}

type createPayload struct {
	CustomerName *string  `json:"customerName"`
	Address      *string  `json:"address"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
}

func (d *Dispatcher) orderCreate(data json.RawMessage) {
	var p createPayload
	if err := json.Unmarshal(data, &p); err != nil {
		d.drop(EventOrderCreate, "malformed")
		return
	}
	if p.CustomerName == nil || p.Address == nil || p.Lat == nil || p.Lng == nil {
		d.drop(EventOrderCreate, "missing_fields")
		return
	}

	o := order.Order{
		ID:           uuid.NewString(),
		CustomerName: *p.CustomerName,
		Address:      *p.Address,
		Lat:          *p.Lat,
		Lng:          *p.Lng,
		Status:       order.StatusCreated,
		CreatedAt:    time.Now().UTC(),
	}
	d.orders.Put(o)
	metrics.OrdersInStore.Set(float64(d.orders.Len()))

	d.rooms.Broadcast(hub.Admins(), EventOrderCreated, o)
	d.rooms.Broadcast(hub.Admins(), EventOrdersSnapshot, d.orders.List())
	d.feed.Record(feed.TypeOrderCreated, o.ID, &o)
}

type statusPayload struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

func (d *Dispatcher) orderStatus(data json.RawMessage) {
	var p statusPayload
	if err := json.Unmarshal(data, &p); err != nil {
		d.drop(EventOrderStatus, "malformed")
		return
	}

	o, found := d.orders.Get(p.OrderID)
	if !found {
		d.drop(EventOrderStatus, "unknown_order")
		return
	}

	// Status text is stored as-is; producers own the vocabulary.
	o.Status = p.Status
	d.orders.Put(o)

	d.rooms.Broadcast(hub.Admins(), EventOrderUpdated, o)
	d.rooms.Broadcast(hub.OrderWatch(o.ID), EventOrderUpdated, o)
	d.feed.Record(feed.TypeOrderUpdated, o.ID, &o)
}

type assignPayload struct {
	OrderID   string `json:"orderId"`
	CourierID string `json:"courierId"`
}

func (d *Dispatcher) orderAssign(data json.RawMessage) {
	var p assignPayload
	if err := json.Unmarshal(data, &p); err != nil {
		d.drop(EventOrderAssign, "malformed")
		return
	}
	if p.CourierID == "" {
		d.drop(EventOrderAssign, "bad_courier_id")
		return
	}

	o, found := d.orders.Get(p.OrderID)
	if !found {
		d.drop(EventOrderAssign, "unknown_order")
		return
	}

	o.CourierID = p.CourierID
	// The only automatic transition in the relay: assignment advances the
	// status from READY_FOR_PICKUP and from nothing else.
	if o.Status == order.StatusReadyForPickup {
		o.Status = order.StatusAssigned
	}
	d.orders.Put(o)

	d.rooms.Broadcast(hub.Courier(p.CourierID), EventOrderAssigned, o)
	d.rooms.Broadcast(hub.Admins(), EventOrderUpdated, o)
	d.rooms.Broadcast(hub.OrderWatch(o.ID), EventOrderUpdated, o)
	d.feed.Record(feed.TypeOrderAssigned, o.ID, &o)
}

func (d *Dispatcher) locationUpdate(data json.RawMessage) {
	var report order.LocationReport
	if err := json.Unmarshal(data, &report); err != nil {
		d.drop(EventLocationUpdate, "malformed")
		return
	}

	if _, found := d.orders.Get(report.OrderID); !found {
		d.drop(EventLocationUpdate, "unknown_order")
		return
	}

	d.locations.Put(report.OrderID, report)

	d.rooms.Broadcast(hub.OrderWatch(report.OrderID), EventLocationDelta, report)
	d.rooms.Broadcast(hub.Admins(), EventLocationDelta, report)
}

type deletePayload struct {
	OrderID string `json:"orderId"`
}

// deletedNotice is the order:deleted payload: just the id.
type deletedNotice struct {
	ID string `json:"id"`
}

func (d *Dispatcher) orderDelete(data json.RawMessage) {
	var p deletePayload
	if err := json.Unmarshal(data, &p); err != nil {
		d.drop(EventOrderDelete, "malformed")
		return
	}

	if !d.orders.Delete(p.OrderID) {
		d.drop(EventOrderDelete, "unknown_order")
		return
	}
	d.locations.Delete(p.OrderID)
	metrics.OrdersInStore.Set(float64(d.orders.Len()))

	notice := deletedNotice{ID: p.OrderID}
	d.rooms.Broadcast(hub.Admins(), EventOrderDeleted, notice)
	d.rooms.Broadcast(hub.OrderWatch(p.OrderID), EventOrderDeleted, notice)
	d.rooms.Broadcast(hub.Admins(), EventOrdersSnapshot, d.orders.List())
	d.feed.Record(feed.TypeOrderDeleted, p.OrderID, nil)
}

// Orders exposes the store for the read endpoints.
func (d *Dispatcher) Orders() *order.Store {
	return d.orders
}

func (d *Dispatcher) drop(event, reason string) {
	metrics.EventsDroppedTotal.WithLabelValues(event, reason).Inc()
	d.logger.Debug("dropped event", zap.String("event", event), zap.String("reason", reason))
}
