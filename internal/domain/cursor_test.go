package domain

import (
	"reflect"
	"testing"
)

func TestSearchCursorRoundTrip(t *testing.T) {
	cursor := &SearchCursor{
		QueryIndex:   3,
		PageToken:    "CAUQAA",
		SeenIDs:      []string{"vid-1", "vid-2", "vid-3"},
		ScannedCount: 75,
	}

	token, err := cursor.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := DecodeSearchCursor(token)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !reflect.DeepEqual(cursor, decoded) {
		t.Fatalf("round trip mismatch: %+v vs %+v", cursor, decoded)
	}
}

func TestDecodeSearchCursorEmptyMeansFirstPage(t *testing.T) {
	cursor, err := DecodeSearchCursor("")
	if err != nil {
		t.Fatalf("expected no error for empty token, got %v", err)
	}
	if cursor != nil {
		t.Fatalf("expected nil cursor, got %+v", cursor)
	}
}

func TestDecodeSearchCursorRejectsGarbage(t *testing.T) {
	cases := []string{
		"not base64!!!",
		"bm90IGpzb24",                  // valid base64, not JSON
		"eyJxdWVyeUluZGV4IjotMX0",      // queryIndex -1
		"eyJzY2FubmVkQ291bnQiOi01MH0", // scannedCount -50
	}

	for _, token := range cases {
		if _, err := DecodeSearchCursor(token); err == nil {
			t.Fatalf("expected decode error for %q", token)
		}
	}
}

func TestSearchCursorSeenSet(t *testing.T) {
	cursor := &SearchCursor{SeenIDs: []string{"a", "b", "a"}}

	set := cursor.SeenSet()

	if len(set) != 2 {
		t.Fatalf("expected 2 distinct IDs, got %d", len(set))
	}
	if _, ok := set["b"]; !ok {
		t.Fatalf("expected b in seen set")
	}
}
