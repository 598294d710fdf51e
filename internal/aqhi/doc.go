// Package aqhi provides a client for the Air Quality Health Index (AQHI) feeds
// published by Environment Canada on dd.weather.gc.ca.
//
// Each monitored region publishes two XML documents: a current observation and a
// forecast with daily periods and hourly values. A separate region list maps
// administrative zones and region codes to station coordinates, which lets a
// caller find the region closest to a point.
//
// Basic usage:
//
//	client, err := aqhi.New(ctx, aqhi.Options{
//		Province: "ont",
//		RegionID: "FEVNT",
//		Language: aqhi.French,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if c, ok := client.Conditions()["aqhi"]; ok && c.Value != nil {
//		fmt.Printf("%s: %s\n", c.Label, *c.Value)
//	}
//
// Resolving by coordinates instead:
//
//	client, err := aqhi.New(ctx, aqhi.Options{
//		Coordinates: &aqhi.Coordinates{Latitude: 43.65, Longitude: -79.38},
//	})
//
// Construction is eager: New resolves the region when needed and performs the
// first Update before returning.
package aqhi
