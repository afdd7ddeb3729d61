package domain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Category is one of the fixed per-user data partitions.
type Category string

const (
	CategoryProjects  Category = "projects"
	CategoryAreas     Category = "areas"
	CategoryTasks     Category = "tasks"
	CategoryResources Category = "resources"
	CategoryHabits    Category = "habits"
	CategoryMetrics   Category = "metrics"
	CategoryLogs      Category = "logs"
)

// Categories returns every category provisioned for a user.
func Categories() []Category {
	return []Category{
		CategoryProjects,
		CategoryAreas,
		CategoryTasks,
		CategoryResources,
		CategoryHabits,
		CategoryMetrics,
		CategoryLogs,
	}
}

const (
	resourcePrefix = "userdb-"

	// encodedMarker starts every hex-encoded subject. plainSubject never
	// matches it, so an encoded name cannot equal a plain one.
	encodedMarker = "_"
)

// Subjects matching this pattern are used as-is. The set is valid in both a
// CouchDB database name and a MongoDB collection name.
var plainSubject = regexp.MustCompile(`^[a-z0-9-]+$`)

// ResourceName returns the store name for a subject's category. Other
// subjects are hex-encoded behind encodedMarker. Categories hold no '-', so
// the mapping is injective.
func ResourceName(subjectID string, c Category) string {
	subject := subjectID
	if !plainSubject.MatchString(subject) {
		subject = encodedMarker + hex.EncodeToString([]byte(subjectID))
	}
	return resourcePrefix + subject + "-" + string(c)
}

// Principals lists user names and roles, mirroring CouchDB's _security shape.
type Principals struct {
	Names []string `json:"names" bson:"names"`
	Roles []string `json:"roles" bson:"roles"`
}

// SecurityDescriptor is the access-control document applied to a resource.
type SecurityDescriptor struct {
	Admins  Principals `json:"admins" bson:"admins"`
	Members Principals `json:"members" bson:"members"`
}

// OwnerOnly grants the subject member access and the service account admin
// access. Nobody else is listed.
func OwnerOnly(subjectID, serviceAccount string) SecurityDescriptor {
	return SecurityDescriptor{
		Admins:  Principals{Names: []string{serviceAccount}, Roles: []string{"_admin"}},
		Members: Principals{Names: []string{subjectID}, Roles: []string{}},
	}
}

// CategoryOutcome records what happened to one category during provisioning.
type CategoryOutcome struct {
	Category Category
	Resource string
	Created  bool
	Err      error
}

// ProvisionResult aggregates the per-category outcomes of EnsureResources.
type ProvisionResult struct {
	SubjectID string
	Outcomes  []CategoryOutcome
}

// Failed returns the outcomes that carry an error.
func (r ProvisionResult) Failed() []CategoryOutcome {
	var failed []CategoryOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Created counts resources created by this call.
func (r ProvisionResult) Created() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Created {
			n++
		}
	}
	return n
}

// FailedCategories returns the names of the failed categories.
func (r ProvisionResult) FailedCategories() []string {
	failed := r.Failed()
	names := make([]string, 0, len(failed))
	for _, o := range failed {
		names = append(names, string(o.Category))
	}
	return names
}

// Err is nil when every category succeeded. Otherwise it wraps
// ErrProvisioningPartialFailure and every category error.
func (r ProvisionResult) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failed))
	for _, o := range failed {
		errs = append(errs, fmt.Errorf("%s: %w", o.Category, o.Err))
	}
	return fmt.Errorf("%w (%d of %d categories: %s): %w",
		ErrProvisioningPartialFailure,
		len(failed), len(r.Outcomes),
		strings.Join(r.FailedCategories(), ","),
		errors.Join(errs...))
}
