package spec

import "testing"

func TestFallbackOperationID(t *testing.T) {
	t.Parallel()
	cases := []struct {
		pattern string
		verb    Verb
		want    string
	}{
		{"/users/{id}", GET, "getUsersId"},
		{"/users", POST, "postUsers"},
		{"/users/{id}/pets/{petId}", DELETE, "deleteUsersIdPetsPetId"},
		{"/", GET, "getRoot"},
		{"", GET, "getRoot"},
		{"//", PATCH, "patchRoot"},
		{"/user-profiles", PUT, "putUserProfiles"},
		{"/v1/store_items", GET, "getV1StoreItems"},
		{"//users//", GET, "getUsers"},
		{"/users/{user-IDs}", GET, "getUsersUserIDs"},
	}
	for _, tc := range cases {
		if got := FallbackOperationID(tc.pattern, tc.verb); got != tc.want {
			t.Errorf("FallbackOperationID(%q, %s) = %q, want %q", tc.pattern, tc.verb, got, tc.want)
		}
	}
}

func TestTypeName(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want string
	}{
		{"pet", "Pet"},
		{"Pet", "Pet"},
		{"pet-store.Order", "PetStoreOrder"},
		{"user_id", "UserId"},
		{"HTTPError", "HTTPError"},
		{"", "Schema"},
		{"--", "Schema"},
		{"1response", "Type1response"},
	}
	for _, tc := range cases {
		if got := TypeName(tc.in); got != tc.want {
			t.Errorf("TypeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIdentifier(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want string
	}{
		{"getUsersId", "getUsersId"},
		{"listPets", "listPets"},
		{"get pet by id", "getPetById"},
		{"SearchItems", "searchItems"},
		{"find-by-status", "findByStatus"},
		{"1response", "op1response"},
		{"", "op"},
		{"***", "op"},
	}
	for _, tc := range cases {
		if got := Identifier(tc.in); got != tc.want {
			t.Errorf("Identifier(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExportName(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want string
	}{
		{"getUsersId", "GetUsersId"},
		{"x", "X"},
		{"", ""},
		{"AlreadyUpper", "AlreadyUpper"},
	}
	for _, tc := range cases {
		if got := ExportName(tc.in); got != tc.want {
			t.Errorf("ExportName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
