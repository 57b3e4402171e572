package mongo

import (
	"testing"

	mongodb "hostelbook/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCollectionDefinitions_CoverEveryCollection(t *testing.T) {
	want := map[string]bool{
		mongodb.UsersCollection:     false,
		mongodb.HostelsCollection:   false,
		mongodb.RoomsCollection:     false,
		mongodb.BookingsCollection:  false,
		mongodb.RoomLocksCollection: false,
	}

	for _, def := range collectionDefinitions() {
		if _, ok := want[def.Name]; !ok {
			t.Errorf("unexpected collection %s", def.Name)
			continue
		}
		want[def.Name] = true
		if def.Validator["$jsonSchema"] == nil {
			t.Errorf("collection %s has no $jsonSchema validator", def.Name)
		}
		if len(def.Indexes) == 0 {
			t.Errorf("collection %s has no indexes", def.Name)
		}
	}

	for name, seen := range want {
		if !seen {
			t.Errorf("collection %s is not migrated", name)
		}
	}
}

func TestBookingsIndexes_ActiveUniqueness(t *testing.T) {
	found := map[string]bool{}

	for _, idx := range BookingsIndexes {
		if idx.Options == nil || idx.Options.Name == nil {
			continue
		}
		name := *idx.Options.Name
		if name != mongodb.IndexActiveBookingPerStudent && name != mongodb.IndexActiveBookingPerRoom {
			continue
		}

		if idx.Options.Unique == nil || !*idx.Options.Unique {
			t.Errorf("index %s must be unique", name)
		}
		filter, ok := idx.Options.PartialFilterExpression.(bson.D)
		if !ok || len(filter) != 1 || filter[0].Key != "status" {
			t.Errorf("index %s must be filtered on status, got %v", name, idx.Options.PartialFilterExpression)
		}
		found[name] = true
	}

	if !found[mongodb.IndexActiveBookingPerStudent] || !found[mongodb.IndexActiveBookingPerRoom] {
		t.Errorf("missing active-booking unique indexes: %v", found)
	}
}

func TestRoomLocksIndexes_TTL(t *testing.T) {
	if len(RoomLocksIndexes) != 1 {
		t.Fatalf("expected one index, got %d", len(RoomLocksIndexes))
	}
	opts := RoomLocksIndexes[0].Options
	if opts == nil || opts.ExpireAfterSeconds == nil || *opts.ExpireAfterSeconds != 0 {
		t.Errorf("room locks must expire at expires_at")
	}
}
