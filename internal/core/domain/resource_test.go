package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestResourceName(t *testing.T) {
	cases := []struct {
		subject  string
		category Category
		want     string
	}{
		{"1234567890", CategoryProjects, "userdb-1234567890-projects"},
		{"github-42", CategoryLogs, "userdb-github-42-logs"},
		{"User@Example", CategoryTasks, "userdb-_55736572404578616d706c65-tasks"},
		{"A", CategoryProjects, "userdb-_41-projects"},
		{"41", CategoryProjects, "userdb-41-projects"},
		{"a_b", CategoryAreas, "userdb-_615f62-areas"},
		{"a$b", CategoryHabits, "userdb-_612462-habits"},
	}
	for _, tc := range cases {
		if got := ResourceName(tc.subject, tc.category); got != tc.want {
			t.Fatalf("ResourceName(%q, %q) = %q, want %q", tc.subject, tc.category, got, tc.want)
		}
	}
}

func TestResourceName_DistinctSubjectsNeverShare(t *testing.T) {
	subjects := []string{"A", "41", "_41", "a", "61", "a-b", "a_b", "612d62", "_612d62", "github-42", "Github-42", ""}
	seen := make(map[string]string)
	for _, s := range subjects {
		for _, c := range Categories() {
			name := ResourceName(s, c)
			if other, ok := seen[name]; ok {
				t.Fatalf("subjects %q and %q both map to %q", other, s, name)
			}
			seen[name] = s
		}
	}
}

func TestCategories_FixedSet(t *testing.T) {
	got := Categories()
	if len(got) != 7 {
		t.Fatalf("expected 7 categories, got %d", len(got))
	}
	got[0] = "mutated"
	if Categories()[0] != CategoryProjects {
		t.Fatalf("Categories must return a fresh slice")
	}
}

func TestOwnerOnly(t *testing.T) {
	sec := OwnerOnly("u1", "admin")
	if len(sec.Members.Names) != 1 || sec.Members.Names[0] != "u1" {
		t.Fatalf("unexpected members: %+v", sec.Members)
	}
	if len(sec.Members.Roles) != 0 {
		t.Fatalf("members must carry no roles: %+v", sec.Members)
	}
	if sec.Admins.Names[0] != "admin" || sec.Admins.Roles[0] != "_admin" {
		t.Fatalf("unexpected admins: %+v", sec.Admins)
	}
}

func TestProvisionResult_Err(t *testing.T) {
	ok := ProvisionResult{Outcomes: []CategoryOutcome{
		{Category: CategoryProjects, Created: true},
		{Category: CategoryAreas},
	}}
	if ok.Err() != nil {
		t.Fatalf("expected nil error, got %v", ok.Err())
	}
	if ok.Created() != 1 {
		t.Fatalf("expected 1 created, got %d", ok.Created())
	}

	boom := errors.New("boom")
	partial := ProvisionResult{Outcomes: []CategoryOutcome{
		{Category: CategoryProjects, Created: true},
		{Category: CategoryLogs, Err: boom},
	}}
	err := partial.Err()
	if !errors.Is(err, ErrProvisioningPartialFailure) {
		t.Fatalf("expected partial failure, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected category error to be wrapped, got %v", err)
	}
	if !strings.Contains(err.Error(), "logs") {
		t.Fatalf("expected failed category in message: %v", err)
	}
	if got := partial.FailedCategories(); len(got) != 1 || got[0] != "logs" {
		t.Fatalf("unexpected failed categories: %v", got)
	}
}

func TestProfileFromClaims_DefaultsName(t *testing.T) {
	p := ProfileFromClaims(Claims{SubjectID: "u1", Email: "a@b.com"})
	if p.Name != DefaultDisplayName || p.Plan != DefaultPlan || p.ID != "u1" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}
