package parse

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	fulfilmentRe = regexp.MustCompile(`(?i)^\s*(.+?)\s*-\s*(home\s+delivery|store\s+pick)\s*$`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// ShipmentType holds the structured data parsed from a shipment-type label.
type ShipmentType struct {
	Label      string `json:"label"`
	Source     string `json:"source"`
	Fulfilment string `json:"fulfilment"`
	Priority   bool   `json:"priority"`
}

// ParseShipmentType splits a label such as "Priority Stock HUB - Store Pick"
// into its stock source and fulfilment mode.
func ParseShipmentType(raw string) (ShipmentType, error) {
	s := strings.TrimSpace(spaceRe.ReplaceAllString(raw, " "))

	m := fulfilmentRe.FindStringSubmatch(s)
	if m == nil {
		return ShipmentType{}, fmt.Errorf("unable to parse shipment type: %q", raw)
	}

	source := strings.TrimSpace(m[1])
	if source == "" {
		return ShipmentType{}, fmt.Errorf("shipment type %q has no source", raw)
	}

	fulfilment := "Home Delivery"
	if strings.HasPrefix(strings.ToLower(m[2]), "store") {
		fulfilment = "Store Pick"
	}

	return ShipmentType{
		Label:      raw,
		Source:     source,
		Fulfilment: fulfilment,
		// Case-sensitive: only the catalogue spelling marks a priority lane.
		Priority: strings.Contains(source, "Priority"),
	}, nil
}
