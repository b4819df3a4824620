package proof

type uploadInput struct {
	ContentType string `header:"Content-Type"`
	RawBody     []byte `contentType:"image/*"`
}

type uploadOutput struct {
	Body uploadResponse
}

type uploadResponse struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}
