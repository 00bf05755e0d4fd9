package validators

import "go.mongodb.org/mongo-driver/bson"

var RegistrationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"trip_id",
			"contact_name",
			"contact_number",
			"persons",
			"document_status",
			"room_status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"trip_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"contact_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"contact_number": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9]\d{7,14}$`,
			},
			"pnr": bson.M{
				"bsonType":  "string",
				"maxLength": 20,
			},
			"persons": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"name", "gender"},
					"properties": bson.M{
						"name": bson.M{
							"bsonType":  "string",
							"minLength": 2,
							"maxLength": 100,
						},
						"age": bson.M{
							"bsonType": []string{"int", "long"},
							"minimum":  0,
							"maximum":  120,
						},
						"gender": bson.M{
							"enum": []string{"male", "female", "other"},
						},
						"is_handicapped": bson.M{
							"bsonType": "bool",
						},
					},
				},
			},
			"documents": bson.M{
				"bsonType": []string{"array", "null"},
				"items":    bson.M{"bsonType": "string"},
			},
			"document_status": bson.M{
				"enum": []string{"pending", "approved", "rejected", "cancelled"},
			},
			"rejection_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},
			"cancellation_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},
			"room_status": bson.M{
				"enum": []string{"Pending", "Assigned"},
			},
			"hotel_id": bson.M{
				"bsonType": "string",
			},
			"room_number": bson.M{
				"bsonType": "string",
			},
			"secondary_rooms": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "string"},
			},
			"arrival_date": bson.M{
				"bsonType": "date",
			},
			"return_date": bson.M{
				"bsonType": "date",
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
