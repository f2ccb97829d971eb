package health

// StatusResponse HTTP response model
type StatusResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
