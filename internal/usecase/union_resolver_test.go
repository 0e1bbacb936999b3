package usecase

import (
	"context"
	"errors"
	"testing"

	"salonsync-service/internal/domain/entity"
)

func TestResolveClientUnionDeduplicates(t *testing.T) {
	// a1 matches clientId and userId, a2 only clientInfo.id
	env := newTestEnv(
		&entity.AppointmentDocument{ID: "a1", ClientID: "c1", UserID: "c1"},
		&entity.AppointmentDocument{ID: "a2", ClientInfo: &entity.EmbeddedClientInfo{ID: "c1"}},
		&entity.AppointmentDocument{ID: "a3", ClientID: "other"},
	)

	docs, err := env.resolver.Resolve(context.Background(), "c1", entity.RoleClient)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	seen := map[string]int{}
	for _, doc := range docs {
		seen[doc.ID]++
	}
	if seen["a1"] != 1 || seen["a2"] != 1 {
		t.Errorf("expected a1 and a2 exactly once, got %v", seen)
	}
	if env.store.scans != 0 {
		t.Errorf("fallback scan should not run when the union is non-empty, got %d scans", env.store.scans)
	}
}

func TestResolveStylistCoversAllOwnershipFields(t *testing.T) {
	env := newTestEnv(
		&entity.AppointmentDocument{ID: "a1", StylistID: "s1"},
		&entity.AppointmentDocument{ID: "a2", EmployeeID: "s1"},
		&entity.AppointmentDocument{ID: "a3", ServiceStylistPairs: []entity.ServiceStylistPair{{ServiceID: "svc", StylistID: "s1"}}},
		&entity.AppointmentDocument{ID: "a4", Stylists: []string{"s1", "s2"}},
		&entity.AppointmentDocument{ID: "a5", StylistID: "s2"},
	)

	docs, err := env.resolver.Resolve(context.Background(), "s1", entity.RoleStylist)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(docs) != 4 {
		t.Fatalf("expected 4 documents, got %d", len(docs))
	}
}

func TestResolveContinuesPastFailingQuery(t *testing.T) {
	env := newTestEnv(
		&entity.AppointmentDocument{ID: "a1", UserID: "c1"},
	)
	env.store.queryErr["clientId"] = errors.New("index unavailable")

	docs, err := env.resolver.Resolve(context.Background(), "c1", entity.RoleClient)
	if err != nil {
		t.Fatalf("a single failing query must not fail the union: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "a1" {
		t.Fatalf("expected a1 from the surviving queries, got %v", docs)
	}
	if env.store.scans != 0 {
		t.Errorf("fallback scan should not run, got %d scans", env.store.scans)
	}
}

func TestResolveFallsBackToScanWhenUnionEmpty(t *testing.T) {
	env := newTestEnv(
		&entity.AppointmentDocument{ID: "a1", ClientID: "c1"},
		&entity.AppointmentDocument{ID: "a2", ClientID: "other"},
	)
	failure := errors.New("query failed")
	env.store.queryErr["clientId"] = failure
	env.store.queryErr["userId"] = failure
	env.store.queryErr["clientInfo.id"] = failure

	docs, err := env.resolver.Resolve(context.Background(), "c1", entity.RoleClient)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if env.store.scans != 1 {
		t.Fatalf("expected exactly one fallback scan, got %d", env.store.scans)
	}
	if len(docs) != 1 || docs[0].ID != "a1" {
		t.Fatalf("expected only the owned document from the scan, got %v", docs)
	}
}

func TestResolveFallbackScanError(t *testing.T) {
	env := newTestEnv()
	env.store.scanErr = errors.New("collection unavailable")

	if _, err := env.resolver.Resolve(context.Background(), "c1", entity.RoleClient); err == nil {
		t.Fatal("expected error when the fallback scan fails")
	}
}

func TestResolveUnknownRole(t *testing.T) {
	env := newTestEnv()
	if _, err := env.resolver.Resolve(context.Background(), "x", "manager"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestFilterOwnedSkipsBlankAndDuplicateIDs(t *testing.T) {
	docs := []*entity.AppointmentDocument{
		{ID: "", ClientID: "c1"},
		{ID: "a1", ClientID: "c1"},
		{ID: "a1", ClientID: "c1"},
	}
	owned := FilterOwned(docs, "c1", entity.RoleClient)
	if len(owned) != 1 {
		t.Fatalf("expected 1 document after dedupe, got %d", len(owned))
	}
}
