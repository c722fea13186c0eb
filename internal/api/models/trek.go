package models

// TrekSummary is a trek as it appears in list responses and on the globe.
type TrekSummary struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Blurb   string  `json:"blurb,omitempty"`
	Marker  Point   `json:"marker"`
}

// TrekListResponse is a page of treks.
type TrekListResponse struct {
	Items []TrekSummary     `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// TrekResponse is a full trek record.
type TrekResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Country        string    `json:"country"`
	Blurb          string    `json:"blurb,omitempty"`
	Marker         Point     `json:"marker"`
	DefaultBearing *float64  `json:"defaultBearing,omitempty"`
	DefaultPitch   *float64  `json:"defaultPitch,omitempty"`
	CreatedAt      Timestamp `json:"createdAt"`
	UpdatedAt      Timestamp `json:"updatedAt"`
}

// CampResponse is one day's camp.
type CampResponse struct {
	DayNumber        int      `json:"dayNumber"`
	Name             string   `json:"name"`
	Coordinates      Point    `json:"coordinates"`
	Elevation        float64  `json:"elevation"`
	Description      string   `json:"description,omitempty"`
	Highlights       []string `json:"highlights,omitempty"`
	Weather          *string  `json:"weather,omitempty"`
	PointsOfInterest []string `json:"pointsOfInterest,omitempty"`
	FunFacts         []string `json:"funFacts,omitempty"`
	HistoricalSites  []string `json:"historicalSites,omitempty"`
}

// TrekDataResponse is the route payload the map client renders. The route is
// a precision-5 encoded polyline with a parallel per-point elevation array.
type TrekDataResponse struct {
	TrekID        string         `json:"trekId"`
	RoutePolyline string         `json:"routePolyline"`
	Elevations    []float64      `json:"elevations"`
	Bounds        *GeoBox        `json:"bounds,omitempty"`
	Camps         []CampResponse `json:"camps"`
}

// ProfileResponse is the elevation chart for a trek.
type ProfileResponse struct {
	MinElevation float64 `json:"minElevation"`
	MaxElevation float64 `json:"maxElevation"`
	PlotMin      float64 `json:"plotMin"`
	PlotMax      float64 `json:"plotMax"`
	TotalKm      float64 `json:"totalKm"`
	LinePath     string  `json:"linePath"`
	AreaPath     string  `json:"areaPath"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
}

// StatsResponse is the day-over-day statistics panel.
type StatsResponse struct {
	TotalDistanceKm float64 `json:"totalDistanceKm"`
	TotalDays       int     `json:"totalDays"`
	AvgDailyKm      float64 `json:"avgDailyKm"`
	MaxDailyGainM   float64 `json:"maxDailyGainM"`
	MinElevationM   float64 `json:"minElevationM"`
	MaxElevationM   float64 `json:"maxElevationM"`
	HighestCampName string  `json:"highestCampName,omitempty"`
	HighestCampM    float64 `json:"highestCampM"`
	HighestCampDay  int     `json:"highestCampDay"`
	RoutePointCount int     `json:"routePointCount"`
}

// CameraResponse is the computed day-view camera for the web client.
type CameraResponse struct {
	Day     int     `json:"day"`
	Center  Point   `json:"center"`
	Zoom    float64 `json:"zoom"`
	Bearing float64 `json:"bearing"`
	Pitch   float64 `json:"pitch"`

	// Segment is the day's route slice to highlight. Omitted when the camp
	// could not be matched to the route.
	Segment []Point `json:"segment,omitempty"`
}

// TrekUpsertRequest creates or updates a trek record.
type TrekUpsertRequest struct {
	Name           string   `json:"name"`
	Country        string   `json:"country"`
	Blurb          string   `json:"blurb"`
	Marker         Point    `json:"marker"`
	DefaultBearing *float64 `json:"defaultBearing,omitempty"`
	DefaultPitch   *float64 `json:"defaultPitch,omitempty"`
}

// CampUpsert is one camp in a data upsert.
type CampUpsert struct {
	DayNumber        int      `json:"dayNumber"`
	Name             string   `json:"name"`
	Coordinates      Point    `json:"coordinates"`
	Elevation        float64  `json:"elevation"`
	Description      string   `json:"description,omitempty"`
	Highlights       []string `json:"highlights,omitempty"`
	Weather          *string  `json:"weather,omitempty"`
	PointsOfInterest []string `json:"pointsOfInterest,omitempty"`
	FunFacts         []string `json:"funFacts,omitempty"`
	HistoricalSites  []string `json:"historicalSites,omitempty"`
	Bearing          *float64 `json:"bearing,omitempty"`
	Pitch            *float64 `json:"pitch,omitempty"`
}

// TrekDataUpsertRequest replaces a trek's route and camps.
type TrekDataUpsertRequest struct {
	RoutePolyline string       `json:"routePolyline"`
	Elevations    []float64    `json:"elevations"`
	Camps         []CampUpsert `json:"camps"`
}
