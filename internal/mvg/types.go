package mvg

// RawDeparture is a single departure as returned by the MVG departures endpoint.
// Only the fields the departure board consumes are decoded.
type RawDeparture struct {
	TransportType         string `json:"transportType"` // "TRAM", "BUS", "UBAHN", ...
	Label                 string `json:"label"`         // line number, e.g. "20"
	Destination           string `json:"destination"`
	PlannedDepartureTime  int64  `json:"plannedDepartureTime"`  // epoch milliseconds
	RealtimeDepartureTime int64  `json:"realtimeDepartureTime"` // epoch milliseconds
	Cancelled             bool   `json:"cancelled"`
	DelayInMinutes        int    `json:"delayInMinutes"`
}
