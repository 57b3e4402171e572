package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"student_id",
			"room_id",
			"hostel_id",
			"status",
			"created_at",
			"updated_at",
		},
		"additionalProperties": false,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "objectId"},
			"student_id": bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"room_id":    bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"hostel_id":  bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"pending", "approved", "rejected"},
			},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}

var RoomLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "owner", "expires_at", "created_at"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string", "pattern": "^room_lock_"},
			"owner":      bson.M{"bsonType": "string", "minLength": 1},
			"expires_at": bson.M{"bsonType": "date"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
