package mongo

import "go.mongodb.org/mongo-driver/bson"

// LookupByHexID joins the document of collection from whose _id matches the
// hex string stored in localField, and unwinds it into as. Missing or
// malformed references leave as unset instead of failing the pipeline.
// Fields listed in exclude are projected out of the joined document.
func LookupByHexID(from, localField, as string, exclude ...string) []bson.D {
	inner := bson.A{
		bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
			{Key: "$eq", Value: bson.A{"$_id", "$$ref"}},
		}}}}},
	}
	if len(exclude) > 0 {
		projection := bson.D{}
		for _, field := range exclude {
			projection = append(projection, bson.E{Key: field, Value: 0})
		}
		inner = append(inner, bson.D{{Key: "$project", Value: projection}})
	}

	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: from},
			{Key: "let", Value: bson.D{{Key: "ref", Value: toObjectID("$" + localField)}}},
			{Key: "pipeline", Value: inner},
			{Key: "as", Value: as},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + as},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

func toObjectID(field string) bson.D {
	return bson.D{{Key: "$convert", Value: bson.D{
		{Key: "input", Value: field},
		{Key: "to", Value: "objectId"},
		{Key: "onError", Value: nil},
		{Key: "onNull", Value: nil},
	}}}
}
