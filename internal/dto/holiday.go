package dto

// CreateHolidayRequest registers a holiday over an inclusive date range.
type CreateHolidayRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
}

// HolidayResponse renders a holiday with civil dates.
type HolidayResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}
