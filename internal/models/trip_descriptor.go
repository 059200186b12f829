package models

import "encoding/json"

// TripDescriptor holds information about an upstream MBTA trip: one
// scheduled run of a vehicle along a route. Commuter rail trips carry a
// rider-facing train name ("505").
type TripDescriptor struct {
	ID                   string
	Name                 string
	Headsign             string
	DirectionID          int
	BlockID              string
	ShapeID              string
	WheelchairAccessible int
	BikesAllowed         int
	RouteID              string
}

// DecodeTripDescriptor builds a TripDescriptor from a JSON:API resource object.
func DecodeTripDescriptor(res Resource) (TripDescriptor, error) {
	var attrs struct {
		Name                 string `json:"name"`
		Headsign             string `json:"headsign"`
		DirectionID          int    `json:"direction_id"`
		BlockID              string `json:"block_id"`
		ShapeID              string `json:"shape_id"`
		WheelchairAccessible int    `json:"wheelchair_accessible"`
		BikesAllowed         int    `json:"bikes_allowed"`
	}
	if len(res.Attributes) > 0 {
		if err := json.Unmarshal(res.Attributes, &attrs); err != nil {
			return TripDescriptor{}, err
		}
	}
	return TripDescriptor{
		ID:                   res.ID,
		Name:                 attrs.Name,
		Headsign:             attrs.Headsign,
		DirectionID:          attrs.DirectionID,
		BlockID:              attrs.BlockID,
		ShapeID:              attrs.ShapeID,
		WheelchairAccessible: attrs.WheelchairAccessible,
		BikesAllowed:         attrs.BikesAllowed,
		RouteID:              res.RelatedID("route"),
	}, nil
}
