package hub

// Room identifies a named interest group. Keeping it opaque (constructors
// only) stops raw room strings from leaking through the codebase.
type Room struct {
	name string
}

func Admins() Room {
	return Room{name: "admins"}
}

func Courier(courierID string) Room {
	return Room{name: "courier:" + courierID}
}

func OrderWatch(orderID string) Room {
	return Room{name: "order:" + orderID}
}

func (r Room) String() string {
	return r.name
}
