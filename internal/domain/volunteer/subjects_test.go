package volunteer

import "testing"

func TestParseSubjectSet(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"sorted", "化学,生物", "化学,生物"},
		{"unsorted", "生物,化学", "化学,生物"},
		{"spaces", " 生物 , 化学 ", "化学,生物"},
		{"dupes", "化学,化学,生物", "化学,生物"},
		{"empty parts", "化学,,生物,", "化学,生物"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseSubjectSet(tc.in).Combo()
			if got != tc.want {
				t.Fatalf("ParseSubjectSet(%q).Combo() = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSubjectSetEqual(t *testing.T) {
	a := ParseSubjectSet("生物,化学")
	b := ParseSubjectSet("化学,生物")
	if !a.Equal(b) {
		t.Fatalf("sets with same members in different order should be equal")
	}
	c := ParseSubjectSet("化学,地理")
	if a.Equal(c) {
		t.Fatalf("sets with different members should not be equal")
	}
}

func TestPartitionKeyMatches(t *testing.T) {
	key := PartitionKey{
		Region:    "广东",
		Track:     "物理",
		Subjects:  ParseSubjectSet("生物,化学"),
		CycleYear: 2026,
	}
	row := &Choice{
		Region:       "广东",
		Track:        "物理",
		SubjectCombo: "化学,生物",
		CycleYear:    2026,
	}
	if !key.Matches(row) {
		t.Fatalf("expected row to match its partition key")
	}
	row.SubjectCombo = "地理,化学"
	if key.Matches(row) {
		t.Fatalf("expected combo mismatch to fail")
	}
}
