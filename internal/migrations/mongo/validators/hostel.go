package validators

import "go.mongodb.org/mongo-driver/bson"

var HostelValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"name", "location", "capacity", "created_at"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "objectId"},
			"name":       bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			"location":   bson.M{"bsonType": "string", "minLength": 2, "maxLength": 200},
			"capacity":   bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
