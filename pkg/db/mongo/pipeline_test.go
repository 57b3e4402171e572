package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestLookupByHexID_Stages(t *testing.T) {
	stages := LookupByHexID(RoomsCollection, "room_id", "room")
	if len(stages) != 2 {
		t.Fatalf("expected lookup and unwind stages, got %d", len(stages))
	}
	if stages[0][0].Key != "$lookup" || stages[1][0].Key != "$unwind" {
		t.Errorf("unexpected stage order: %s, %s", stages[0][0].Key, stages[1][0].Key)
	}

	lookup := stages[0][0].Value.(bson.D)
	if lookup[0].Value != RoomsCollection {
		t.Errorf("expected lookup from %s, got %v", RoomsCollection, lookup[0].Value)
	}
}

func TestLookupByHexID_ExcludesFields(t *testing.T) {
	stages := LookupByHexID(UsersCollection, "student_id", "student", "password_hash")

	lookup := stages[0][0].Value.(bson.D)
	inner := lookup[2].Value.(bson.A)
	if len(inner) != 2 {
		t.Fatalf("expected match and project in the inner pipeline, got %d stages", len(inner))
	}
	project := inner[1].(bson.D)[0].Value.(bson.D)
	if project[0].Key != "password_hash" || project[0].Value != 0 {
		t.Errorf("expected password_hash to be projected out, got %v", project)
	}
}
