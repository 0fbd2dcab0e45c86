package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestOrderedMap_UnmarshalKeepsKeyOrder(t *testing.T) {
	var m ColumnMapping
	data := `{"weekendId":"ID","countryCode":"Country","weekendDate":"Date","description":""}`
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"weekendId", "countryCode", "weekendDate", "description"}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected keys %v, got %v", want, got)
	}
	if v, _ := m.Get("weekendDate"); v != "Date" {
		t.Errorf("expected label 'Date', got %q", v)
	}
}

func TestOrderedMap_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	var m SortCriteria
	m.Set("name", SortAsc)
	m.Set("code", SortDesc)
	m.Set("name", SortDesc)

	if got := m.Keys(); !reflect.DeepEqual(got, []string{"name", "code"}) {
		t.Errorf("unexpected key order %v", got)
	}
	if v, _ := m.Get("name"); v != SortDesc {
		t.Errorf("expected last direction DESC, got %s", v)
	}
}

func TestOrderedMap_MarshalInKeyOrder(t *testing.T) {
	var m SortCriteria
	m.Set("weekendDate", SortDesc)
	m.Set("countryCode", SortAsc)

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != `{"weekendDate":"DESC","countryCode":"ASC"}` {
		t.Errorf("unexpected encoding %s", b)
	}

	var empty FilterCriteria
	b, _ = json.Marshal(empty)
	if string(b) != `{}` {
		t.Errorf("expected empty object, got %s", b)
	}
}

func TestOrderedMap_NullAndInvalid(t *testing.T) {
	var m ColumnMapping
	if err := json.Unmarshal([]byte(`null`), &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("expected empty mapping, got %d keys", m.Len())
	}

	if err := json.Unmarshal([]byte(`["a"]`), &m); err == nil {
		t.Error("expected error for array input")
	}
}

func TestPageRequest_Encoding(t *testing.T) {
	req := PageRequest{
		Resource:   "/business-partner",
		Page:       2,
		Size:       30,
		SearchText: "acme",
		Status:     StatusOpen,
	}
	req.SortCriteria.Set("name", SortAsc)
	req.SearchCriteria.Set("clientId", float64(7))

	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"page":2,"size":30,"searchText":"acme","sortCriteria":{"name":"ASC"},"searchCriteria":{"clientId":7},"status":"OPEN"}`
	if string(b) != want {
		t.Errorf("expected %s, got %s", want, b)
	}

	var decoded PageRequest
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := decoded.SearchCriteria.Get("clientId"); v != float64(7) {
		t.Errorf("expected clientId 7, got %v", v)
	}
	if decoded.Resource != "" {
		t.Errorf("resource must not travel in the body, got %q", decoded.Resource)
	}
}
