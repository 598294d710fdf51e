package aqhi

import (
	"fmt"
	"strconv"

	"github.com/golang/geo/s2"
)

// Mean earth radius used to turn the great-circle angle into kilometres.
const earthRadiusKm = 6371.0088

const regionListDocument = "region list"

// ParseRegionList flattens every administrative zone of the region list into
// Region records. Zone attributes override region attributes of the same name.
func ParseRegionList(raw []byte) ([]Region, error) {
	text, err := decodeUTF8BOM(raw)
	if err != nil {
		return nil, &ParseError{Document: regionListDocument, Err: err}
	}

	root, err := parseTree(text)
	if err != nil {
		return nil, &ParseError{Document: regionListDocument, Err: err}
	}

	var regions []Region
	for _, zone := range root.findAll("EC_administrativeZone") {
		for _, el := range zone.findAll("regionList/region") {
			region, err := newRegion(zone, el)
			if err != nil {
				return nil, &ParseError{Document: regionListDocument, Err: err}
			}
			regions = append(regions, region)
		}
	}

	return regions, nil
}

func newRegion(zone, el *element) (Region, error) {
	attrs := make(map[string]string)
	for _, a := range el.Attrs {
		if isNamespaceAttr(a.Name.Space, a.Name.Local) {
			continue
		}
		attrs[a.Name.Local] = a.Value
	}
	for _, child := range el.Children {
		attrs[child.XMLName.Local] = child.text()
	}
	for _, a := range zone.Attrs {
		if isNamespaceAttr(a.Name.Space, a.Name.Local) {
			continue
		}
		attrs[a.Name.Local] = a.Value
	}

	lat, err := parseCoordinate(attrs, "latitude")
	if err != nil {
		return Region{}, err
	}
	lon, err := parseCoordinate(attrs, "longitude")
	if err != nil {
		return Region{}, err
	}

	return Region{
		Abbreviation: firstOf(attrs, "abreviation", "abbreviation"),
		ID:           attrs["cgndb"],
		Name:         firstOf(attrs, "nameEn", "nameFr", "name"),
		Latitude:     lat,
		Longitude:    lon,
		Attributes:   attrs,
	}, nil
}

func parseCoordinate(attrs map[string]string, key string) (float64, error) {
	raw, ok := attrs[key]
	if !ok {
		return 0, fmt.Errorf("region %q: missing %s", attrs["cgndb"], key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("region %q: invalid %s %q: %w", attrs["cgndb"], key, raw, err)
	}
	return v, nil
}

func isNamespaceAttr(space, local string) bool {
	return space == "xmlns" || local == "xmlns"
}

func firstOf(attrs map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := attrs[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b Coordinates) float64 {
	p := s2.LatLngFromDegrees(a.Latitude, a.Longitude)
	q := s2.LatLngFromDegrees(b.Latitude, b.Longitude)
	return p.Distance(q).Radians() * earthRadiusKm
}

// Nearest returns the region closest to c. Ties keep the earliest region.
// The query point is not range checked.
func Nearest(regions []Region, c Coordinates) (Region, error) {
	if len(regions) == 0 {
		return Region{}, &NotFoundError{What: "region near coordinates"}
	}

	best := 0
	bestDistance := Distance(c, regions[0].Coordinates())
	for i := 1; i < len(regions); i++ {
		d := Distance(c, regions[i].Coordinates())
		if d < bestDistance {
			best, bestDistance = i, d
		}
	}

	return regions[best], nil
}
