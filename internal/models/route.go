package models

import "encoding/json"

// RouteType is the GTFS-style vehicle class of an MBTA route.
type RouteType int

const (
	RouteTypeLightRail    RouteType = 0 // Green Line, Mattapan Trolley
	RouteTypeHeavyRail    RouteType = 1 // Red, Orange, Blue Lines
	RouteTypeCommuterRail RouteType = 2
	RouteTypeBus          RouteType = 3
	RouteTypeFerry        RouteType = 4
)

// IsSubway reports whether the route is light or heavy rail. Subway trips
// turn around quickly and their static schedules trail reality; per the
// MBTA v3 API best practices, predictions are authoritative for them.
func (t RouteType) IsSubway() bool {
	return t == RouteTypeLightRail || t == RouteTypeHeavyRail
}

// Description returns a rider-facing description of the route type.
func (t RouteType) Description() string {
	switch t {
	case RouteTypeLightRail:
		return "Subway (Light Rail)"
	case RouteTypeHeavyRail:
		return "Subway (Heavy Rail)"
	case RouteTypeCommuterRail:
		return "Commuter Rail"
	case RouteTypeBus:
		return "Bus"
	case RouteTypeFerry:
		return "Ferry"
	default:
		return "Unknown"
	}
}

// Route holds information about an MBTA route.
type Route struct {
	ID                    string
	Color                 string
	Description           string
	DirectionDestinations []string
	DirectionNames        []string
	FareClass             string
	LongName              string
	ShortName             string
	SortOrder             int
	TextColor             string
	Type                  RouteType
}

// DisplayName returns the rider-facing route name: long name for rail and
// ferry modes, short name for buses.
func (r Route) DisplayName() string {
	if r.Type == RouteTypeBus {
		return r.ShortName
	}
	return r.LongName
}

// DecodeRoute builds a Route from a JSON:API resource object.
func DecodeRoute(res Resource) (Route, error) {
	var attrs struct {
		Color                 string   `json:"color"`
		Description           string   `json:"description"`
		DirectionDestinations []string `json:"direction_destinations"`
		DirectionNames        []string `json:"direction_names"`
		FareClass             string   `json:"fare_class"`
		LongName              string   `json:"long_name"`
		ShortName             string   `json:"short_name"`
		SortOrder             int      `json:"sort_order"`
		TextColor             string   `json:"text_color"`
		Type                  int      `json:"type"`
	}
	if len(res.Attributes) > 0 {
		if err := json.Unmarshal(res.Attributes, &attrs); err != nil {
			return Route{}, err
		}
	}
	return Route{
		ID:                    res.ID,
		Color:                 attrs.Color,
		Description:           attrs.Description,
		DirectionDestinations: attrs.DirectionDestinations,
		DirectionNames:        attrs.DirectionNames,
		FareClass:             attrs.FareClass,
		LongName:              attrs.LongName,
		ShortName:             attrs.ShortName,
		SortOrder:             attrs.SortOrder,
		TextColor:             attrs.TextColor,
		Type:                  RouteType(attrs.Type),
	}, nil
}
