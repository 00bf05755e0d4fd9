package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

func TestAssignmentFilter_Unassigned(t *testing.T) {
	f := assignmentFilter("reg-1", model.Unassigned())

	assert.Equal(t, "reg-1", f["_id"])
	assert.Equal(t, model.RoomPending, f["room_status"])
	assert.Equal(t, bson.M{"$in": bson.A{nil, ""}}, f["hotel_id"])
	assert.Equal(t, bson.M{"$in": bson.A{nil, bson.A{}}}, f["secondary_rooms"])
}

func TestAssignmentFilter_Assigned(t *testing.T) {
	a := model.RoomAssignment{Status: model.RoomAssigned, HotelID: "h1", RoomNumber: "101", SecondaryRooms: []string{"102"}}
	f := assignmentFilter("reg-1", a)

	assert.Equal(t, "h1", f["hotel_id"])
	assert.Equal(t, "101", f["room_number"])
	assert.Equal(t, []string{"102"}, f["secondary_rooms"])
}

func TestAssignmentUpdate(t *testing.T) {
	at := time.Date(2026, 1, 14, 9, 0, 0, 0, time.UTC)

	assigned := assignmentUpdate(model.RoomAssignment{Status: model.RoomAssigned, HotelID: "h1", RoomNumber: "101"}, at)
	set := assigned["$set"].(bson.M)
	assert.Equal(t, "101", set["room_number"])
	assert.Equal(t, at, set["updated_at"])
	assert.Equal(t, bson.M{"secondary_rooms": ""}, assigned["$unset"])

	freed := assignmentUpdate(model.Unassigned(), at)
	assert.Equal(t, bson.M{"hotel_id": "", "room_number": "", "secondary_rooms": ""}, freed["$unset"])
	assert.Equal(t, model.RoomPending, freed["$set"].(bson.M)["room_status"])
}

func TestReviewUpdate(t *testing.T) {
	approve := reviewUpdate(&model.ReviewChange{To: model.DocumentsApproved})
	assert.Equal(t, bson.M{"rejection_reason": ""}, approve["$unset"])

	reject := reviewUpdate(&model.ReviewChange{To: model.DocumentsRejected, RejectionReason: "blurry ticket"})
	assert.Equal(t, "blurry ticket", reject["$set"].(bson.M)["rejection_reason"])
	assert.Nil(t, reject["$unset"])

	cancel := reviewUpdate(&model.ReviewChange{To: model.DocumentsCancelled, CancellationReason: "train cancelled"})
	assert.Equal(t, "train cancelled", cancel["$set"].(bson.M)["cancellation_reason"])
}

func TestRoomChangeUpdate(t *testing.T) {
	filter, update, opts := roomChangeUpdate(model.RoomChange{HotelID: "h1", RoomNumber: "101", From: "", To: "reg-1"})

	assert.Equal(t, bson.M{"_id": "h1"}, filter)
	assert.Equal(t, bson.M{"$set": bson.M{"floors.$[].rooms.$[r].occupied_by": "reg-1"}}, update)
	assert.Equal(t, []any{bson.M{"r.number": "101", "r.occupied_by": ""}}, opts.ArrayFilters.Filters)
}
