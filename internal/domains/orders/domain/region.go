package domain

import "strings"

// Region is an administrative area that places vaccine orders.
type Region string

// Regions are the voivodeships served by the distribution system.
var Regions = []Region{
	"Dolnośląskie",
	"Kujawsko-Pomorskie",
	"Lubelskie",
	"Lubuskie",
	"Łódzkie",
	"Małopolskie",
	"Mazowieckie",
	"Opolskie",
	"Podkarpackie",
	"Podlaskie",
	"Pomorskie",
	"Śląskie",
	"Świętokrzyskie",
	"Warmińsko-Mazurskie",
	"Wielkopolskie",
	"Zachodniopomorskie",
}

func (r Region) IsValid() bool {
	for _, known := range Regions {
		if known == r {
			return true
		}
	}
	return false
}

// ParseRegion resolves raw case-insensitively against Regions.
func ParseRegion(raw string) (Region, error) {
	raw = strings.TrimSpace(raw)
	for _, known := range Regions {
		if strings.EqualFold(string(known), raw) {
			return known, nil
		}
	}
	return "", ErrUnknownRegion
}
