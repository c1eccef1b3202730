package httpdto

import "encoding/json"

// ImageRequest is used for PUT /image
type ImageRequest struct {
	ID    UserID `json:"id"`
	Input string `json:"input"`
}

// ImageResponse carries the user's entry count and the detection response as received.
type ImageResponse struct {
	Entries          int64           `json:"entries"`
	ClarifaiResponse json.RawMessage `json:"clarifaiResponse"`
}
