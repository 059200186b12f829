package models

import "encoding/json"

// Stop holds information about an MBTA stop. Stations usually expose one
// parent station plus one platform-level stop per track, all sharing the
// same rider-facing name.
type Stop struct {
	ID                 string
	Address            string
	AtStreet           string
	Description        string
	Latitude           float64
	Longitude          float64
	LocationType       int
	Municipality       string
	Name               string
	OnStreet           string
	PlatformCode       string
	PlatformName       string
	VehicleType        int
	WheelchairBoarding int
}

// DecodeStop builds a Stop from a JSON:API resource object.
func DecodeStop(res Resource) (Stop, error) {
	var attrs struct {
		Address            string  `json:"address"`
		AtStreet           string  `json:"at_street"`
		Description        string  `json:"description"`
		Latitude           float64 `json:"latitude"`
		Longitude          float64 `json:"longitude"`
		LocationType       int     `json:"location_type"`
		Municipality       string  `json:"municipality"`
		Name               string  `json:"name"`
		OnStreet           string  `json:"on_street"`
		PlatformCode       string  `json:"platform_code"`
		PlatformName       string  `json:"platform_name"`
		VehicleType        int     `json:"vehicle_type"`
		WheelchairBoarding int     `json:"wheelchair_boarding"`
	}
	if len(res.Attributes) > 0 {
		if err := json.Unmarshal(res.Attributes, &attrs); err != nil {
			return Stop{}, err
		}
	}
	return Stop{
		ID:                 res.ID,
		Address:            attrs.Address,
		AtStreet:           attrs.AtStreet,
		Description:        attrs.Description,
		Latitude:           attrs.Latitude,
		Longitude:          attrs.Longitude,
		LocationType:       attrs.LocationType,
		Municipality:       attrs.Municipality,
		Name:               attrs.Name,
		OnStreet:           attrs.OnStreet,
		PlatformCode:       attrs.PlatformCode,
		PlatformName:       attrs.PlatformName,
		VehicleType:        attrs.VehicleType,
		WheelchairBoarding: attrs.WheelchairBoarding,
	}, nil
}
