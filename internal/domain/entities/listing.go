package entities

// ScheduleBlock is one time range in a listing's schedule.
type ScheduleBlock struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// RawListing is a listing as delivered by the collector for one
// (gym, event type) fetch. The collector attaches the content checker's
// validation output; this subsystem never computes it.
type RawListing struct {
	ID                    int64             `json:"id"`
	Name                  string            `json:"name"`
	Date                  string            `json:"date,omitempty"`
	StartDate             string            `json:"start_date"`
	EndDate               string            `json:"end_date,omitempty"`
	Time                  string            `json:"time,omitempty"`
	Schedule              []ScheduleBlock   `json:"schedule,omitempty"`
	Price                 *float64          `json:"price,omitempty"`
	MinAge                *int              `json:"min_age,omitempty"`
	MaxAge                *int              `json:"max_age,omitempty"`
	Description           string            `json:"description,omitempty"`
	DescriptionStatus     DescriptionStatus `json:"description_status,omitempty"`
	HasFlyer              bool              `json:"has_flyer,omitempty"`
	FlyerURL              string            `json:"flyer_url,omitempty"`
	HasOpenings           *bool             `json:"has_openings,omitempty"`
	RegistrationStartDate string            `json:"registration_start_date,omitempty"`
	RegistrationEndDate   string            `json:"registration_end_date,omitempty"`
	ValidationErrors      []ValidationError `json:"validation_errors,omitempty"`
}
