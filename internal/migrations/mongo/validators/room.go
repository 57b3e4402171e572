package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"hostel_id",
			"room_number",
			"room_type",
			"capacity",
			"price",
			"is_available",
			"is_occupied",
			"created_at",
		},
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "objectId"},
			"hostel_id":   bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"room_number": bson.M{"bsonType": "string", "minLength": 1, "maxLength": 20},
			"room_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"single", "double", "shared", "suite"},
			},
			"capacity":     bson.M{"bsonType": []string{"int", "long"}, "minimum": 1, "maximum": 20},
			"price":        bson.M{"bsonType": []string{"double", "int", "long", "decimal"}, "minimum": 0, "exclusiveMinimum": true},
			"description":  bson.M{"bsonType": "string", "maxLength": 1000},
			"images":       bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
			"amenities":    bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
			"is_available": bson.M{"bsonType": "bool"},
			"is_occupied":  bson.M{"bsonType": "bool"},
			"created_by":   bson.M{"bsonType": "string"},
			"created_at":   bson.M{"bsonType": "date"},
			"updated_at":   bson.M{"bsonType": "date"},
		},
	},
}
