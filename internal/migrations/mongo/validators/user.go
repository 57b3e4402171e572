package validators

import "go.mongodb.org/mongo-driver/bson"

// UserValidator enforces the student/admin variant: the profile object present
// must match the role.
var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"role",
			"first_name",
			"last_name",
			"email",
			"password_hash",
			"created_at",
		},
		"properties": bson.M{
			"_id":           bson.M{"bsonType": "objectId"},
			"role":          bson.M{"bsonType": "string", "enum": []string{"student", "admin"}},
			"first_name":    bson.M{"bsonType": "string", "minLength": 1, "maxLength": 50},
			"last_name":     bson.M{"bsonType": "string", "minLength": 1, "maxLength": 50},
			"email":         bson.M{"bsonType": "string", "pattern": "^[^@\\s]+@[^@\\s]+$"},
			"phone_number":  bson.M{"bsonType": "string"},
			"password_hash": bson.M{"bsonType": "string", "minLength": 20},
			"student": bson.M{
				"bsonType": "object",
				"required": []string{"registration_number"},
				"properties": bson.M{
					"registration_number": bson.M{"bsonType": "string", "minLength": 1},
				},
			},
			"admin": bson.M{
				"bsonType": "object",
				"required": []string{"hostel_id"},
				"properties": bson.M{
					"hostel_id": bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
				},
			},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
		"oneOf": []bson.M{
			{
				"properties": bson.M{"role": bson.M{"enum": []string{"student"}}},
				"required":   []string{"student"},
				"not":        bson.M{"required": []string{"admin"}},
			},
			{
				"properties": bson.M{"role": bson.M{"enum": []string{"admin"}}},
				"required":   []string{"admin"},
				"not":        bson.M{"required": []string{"student"}},
			},
		},
	},
}
