package validators

import "go.mongodb.org/mongo-driver/bson"

var roomSchema = bson.M{
	"bsonType": "object",
	"required": []string{"number", "toilet_type", "beds", "charge_per_day"},
	"properties": bson.M{
		"number": bson.M{
			"bsonType":  "string",
			"minLength": 1,
			"maxLength": 20,
		},
		"floor": bson.M{
			"bsonType":  "string",
			"maxLength": 10,
		},
		"toilet_type": bson.M{
			"enum": []string{"western", "indian"},
		},
		"beds": bson.M{
			"bsonType": []string{"int", "long"},
			"minimum":  1,
			"maximum":  20,
		},
		// amounts are stored as decimal strings
		"charge_per_day": bson.M{
			"bsonType": "string",
			"pattern":  `^-?[0-9]+(\.[0-9]+)?$`,
		},
		"occupied_by": bson.M{
			"bsonType": "string",
		},
	},
}

var HotelValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "name", "floors"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 150,
			},
			"address": bson.M{
				"bsonType":  "string",
				"maxLength": 300,
			},
			"has_elevator": bson.M{
				"bsonType": "bool",
			},
			"check_in_time": bson.M{
				"bsonType": "string",
			},
			"check_out_time": bson.M{
				"bsonType": "string",
			},
			"number_of_days": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"floors": bson.M{
				"bsonType": []string{"array", "null"},
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"label", "rooms"},
					"properties": bson.M{
						"label": bson.M{
							"bsonType":  "string",
							"maxLength": 10,
						},
						"rooms": bson.M{
							"bsonType": []string{"array", "null"},
							"items":    roomSchema,
						},
					},
				},
			},
		},
	},
}
