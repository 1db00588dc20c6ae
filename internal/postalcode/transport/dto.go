package transport

// SearchRequest asks for the postal code of a city in a region. Blank
// fields are answered with found=false rather than rejected.
type SearchRequest struct {
	City       string `json:"city" validate:"max=120"`
	RegionCode string `json:"regionCode" validate:"max=10"`
}

type SearchResponse struct {
	Found bool   `json:"found"`
	Code  string `json:"code,omitempty"`
}

// SaveRequest offers a postal code for a city the store does not know.
type SaveRequest struct {
	City       string `json:"city" validate:"max=120"`
	RegionCode string `json:"regionCode" validate:"max=10"`
	Code       string `json:"code" validate:"max=20"`
}

type SaveResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
