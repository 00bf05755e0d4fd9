package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

// orEmpty matches a field holding v, or a missing field when v is empty.
func orEmpty(v string) any {
	if v == "" {
		return bson.M{"$in": bson.A{nil, ""}}
	}
	return v
}

func assignmentFilter(registrationID string, a model.RoomAssignment) bson.M {
	filter := bson.M{
		"_id":         registrationID,
		"room_status": a.Status,
		"hotel_id":    orEmpty(a.HotelID),
		"room_number": orEmpty(a.RoomNumber),
	}
	if len(a.SecondaryRooms) == 0 {
		filter["secondary_rooms"] = bson.M{"$in": bson.A{nil, bson.A{}}}
	} else {
		filter["secondary_rooms"] = a.SecondaryRooms
	}
	return filter
}

func assignmentUpdate(a model.RoomAssignment, at time.Time) bson.M {
	set := bson.M{"room_status": a.Status, "updated_at": at}
	unset := bson.M{}

	if a.IsAssigned() {
		set["hotel_id"] = a.HotelID
		set["room_number"] = a.RoomNumber
	} else {
		unset["hotel_id"] = ""
		unset["room_number"] = ""
	}
	if len(a.SecondaryRooms) > 0 {
		set["secondary_rooms"] = a.SecondaryRooms
	} else {
		unset["secondary_rooms"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func reviewUpdate(change *model.ReviewChange) bson.M {
	set := bson.M{"document_status": change.To, "updated_at": change.At}
	update := bson.M{"$set": set}

	switch change.To {
	case model.DocumentsApproved:
		update["$unset"] = bson.M{"rejection_reason": ""}
	case model.DocumentsRejected:
		set["rejection_reason"] = change.RejectionReason
	case model.DocumentsCancelled:
		set["cancellation_reason"] = change.CancellationReason
	}
	return update
}

// roomChangeUpdate sets occupied_by on the one room whose number matches and
// whose occupant is still change.From. Room numbers are unique per hotel, so
// the all-floors positional operator touches at most one element.
func roomChangeUpdate(change model.RoomChange) (bson.M, bson.M, *options.UpdateOptions) {
	filter := bson.M{"_id": change.HotelID}
	update := bson.M{"$set": bson.M{"floors.$[].rooms.$[r].occupied_by": change.To}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []any{bson.M{"r.number": change.RoomNumber, "r.occupied_by": change.From}},
	})
	return filter, update, opts
}
