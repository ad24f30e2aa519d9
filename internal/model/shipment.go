package model

// ShipmentTypes is the fixed catalogue of shipment categories, in display order.
var ShipmentTypes = []string{
	"Priority Stock HUB - Home Delivery",
	"Priority Stock HUB - Store Pick",
	"Stock Hub - Home Delivery",
	"Stock Hub - Store Pick",
	"Warehouse - Home Delivery",
	"Warehouse - Store Pick",
}

// ShipmentIndex returns the catalogue position of a shipment type, or -1.
func ShipmentIndex(label string) int {
	for i, t := range ShipmentTypes {
		if t == label {
			return i
		}
	}
	return -1
}
