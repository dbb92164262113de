package itemrequest

import "time"

// CreateRequest for POST /requests
type CreateRequest struct {
	Description string `json:"description" validate:"required,notblank,max=512"`
}

// ItemSummary is an item listed in answer to a request
type ItemSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"owner_id"`
	RequestID   int64  `json:"request_id"`
}

// Response represents an item request in API response
type Response struct {
	ID          int64          `json:"id"`
	Description string         `json:"description"`
	RequestorID int64          `json:"requestor_id"`
	Created     time.Time      `json:"created"`
	Items       []*ItemSummary `json:"items"`
}

// ResponseFromEntity maps a request and its items to the API form
func ResponseFromEntity(req *ItemRequest, items []*ItemSummary) *Response {
	if items == nil {
		items = []*ItemSummary{}
	}
	return &Response{
		ID:          req.ID,
		Description: req.Description,
		RequestorID: req.RequestorID,
		Created:     req.Created.UTC(),
		Items:       items,
	}
}
