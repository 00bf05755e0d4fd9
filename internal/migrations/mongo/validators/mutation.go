package validators

import "go.mongodb.org/mongo-driver/bson"

// MutationValidator covers the allocation journal. Entries are append only.
var MutationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "kind", "registration_id", "before", "after", "at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"kind": bson.M{
				"enum": []string{"assign", "reassign", "unassign", "assign_draft"},
			},
			"registration_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"room_changes": bson.M{
				"bsonType": []string{"array", "null"},
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"hotel_id", "room_number"},
				},
			},
			"before": bson.M{
				"bsonType": "object",
			},
			"after": bson.M{
				"bsonType": "object",
			},
			"at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var LockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "owner", "expires_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"owner": bson.M{
				"bsonType": "string",
			},
			"expires_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
