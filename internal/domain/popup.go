package domain

import "strings"

// PopupField is one labelled line of a map marker popup.
type PopupField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MapPoint is a placed crash ready for a map renderer.
type MapPoint struct {
	Lat   float64      `json:"lat"`
	Lon   float64      `json:"lon"`
	Popup []PopupField `json:"popup"`
}

// popupLead are shown first, whenever they are non-blank.
var popupLead = []string{ColLatitude, ColLongitude, ColDate, ColAddress, ColWard}

// popupSkip never appear in a popup.
var popupSkip = map[string]bool{
	ColLatitude:  true,
	ColLongitude: true,
	ColDate:      true,
	ColAddress:   true,
	ColWard:      true,
	"XCOORD":     true,
	"YCOORD":     true,
}

// PopupFields lists the lead location fields followed by every other column,
// in header order, whose value is a non-zero number.
func PopupFields(header []string, rec CrashRecord) []PopupField {
	var out []PopupField
	for _, col := range popupLead {
		if v := rec.Fields[col]; strings.TrimSpace(v) != "" {
			out = append(out, PopupField{Name: col, Value: v})
		}
	}
	for _, col := range header {
		if popupSkip[col] {
			continue
		}
		v := rec.Fields[col]
		if n, ok := parseFinite(v); ok && n != 0 {
			out = append(out, PopupField{Name: col, Value: v})
		}
	}
	return out
}

// Points projects the located records onto map points. Records without
// usable coordinates are skipped.
func Points(header []string, records []CrashRecord) []MapPoint {
	out := make([]MapPoint, 0, len(records))
	for i := range records {
		if !records[i].Located {
			continue
		}
		out = append(out, MapPoint{
			Lat:   records[i].Geo.Lat,
			Lon:   records[i].Geo.Lon,
			Popup: PopupFields(header, records[i]),
		})
	}
	return out
}
