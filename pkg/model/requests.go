package model

// DraftRequest carries a multi-room selection. Beds maps "<room>-<bed>" to
// the index of the person sleeping there.
type DraftRequest struct {
	HotelID string         `json:"hotel_id" validate:"required,max=64"`
	Rooms   []string       `json:"rooms" validate:"required,min=1,max=50,dive,required,max=20"`
	Beds    map[string]int `json:"beds" validate:"omitempty,dive,keys,bed_key,endkeys,min=0"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
