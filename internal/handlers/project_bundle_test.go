package handlers

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func bundleTestProject() (models.Project, map[string]*models.Product) {
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()

	project := models.Project{
		ID:   primitive.NewObjectID(),
		Name: "Villa 12",
		Engineers: []models.Engineer{
			{
				Name:  "Huda",
				Email: "huda@example.com",
				Bundles: []models.Bundle{
					{Title: "Starter", ItemIDs: []string{p1.Hex(), p2.Hex(), "42"}},
				},
			},
			{Name: "Omar"},
		},
	}

	legacy := int64(42)
	catalog := map[string]*models.Product{
		p1.Hex(): {ID: p1, Name: "Cement bag", Price: 2.750},
		p2.Hex(): {ID: p2, Name: "Sand", Price: 1.250},
		"42":     {LegacyID: &legacy, Name: "Tile", Price: 5.000},
	}
	return project, catalog
}

func catalogLookup(catalog map[string]*models.Product) func(string) (*models.Product, error) {
	return func(itemID string) (*models.Product, error) {
		return catalog[itemID], nil
	}
}

func TestExpandBundleResolvesEveryItem(t *testing.T) {
	project, catalog := bundleTestProject()

	resolution, err := expandBundle(project, 0, 0, catalogLookup(catalog))
	if err != nil {
		t.Fatalf("expandBundle returned error: %v", err)
	}

	wantItems := len(project.Engineers[0].Bundles[0].ItemIDs)
	if len(resolution.Items) != wantItems {
		t.Fatalf("expected %d resolved items, got %d", wantItems, len(resolution.Items))
	}
	for i, item := range resolution.Items {
		if item.Quantity != 1 {
			t.Fatalf("item %d: expected quantity 1, got %d", i, item.Quantity)
		}
	}
	// 2.750 + 1.250 + 5.000
	if resolution.Total != 9.000 {
		t.Fatalf("expected total 9.000, got %v", resolution.Total)
	}
	if resolution.Engineer.Name != "Huda" {
		t.Fatalf("expected engineer Huda, got %q", resolution.Engineer.Name)
	}
}

func TestExpandBundleRejectsBadIndexes(t *testing.T) {
	project, catalog := bundleTestProject()
	lookup := catalogLookup(catalog)

	var notFound bundleNotFoundError
	if _, err := expandBundle(project, 5, 0, lookup); !errors.As(err, &notFound) {
		t.Fatalf("expected engineer not-found, got %v", err)
	} else if notFound.Reason != "engineer" {
		t.Fatalf("expected engineer reason, got %q", notFound.Reason)
	}

	if _, err := expandBundle(project, -1, 0, lookup); !errors.As(err, &notFound) {
		t.Fatalf("expected engineer not-found for negative index, got %v", err)
	}

	// second engineer has no bundles at all
	if _, err := expandBundle(project, 1, 0, lookup); !errors.As(err, &notFound) {
		t.Fatalf("expected bundle not-found, got %v", err)
	} else if notFound.Reason != "bundle" {
		t.Fatalf("expected bundle reason, got %q", notFound.Reason)
	}
}

func TestExpandBundleIsAllOrNone(t *testing.T) {
	project, catalog := bundleTestProject()
	delete(catalog, "42")

	_, err := expandBundle(project, 0, 0, catalogLookup(catalog))
	var missing bundleProductsMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected missing-products error, got %v", err)
	}
	if len(missing.Missing) != 1 || missing.Missing[0] != "42" {
		t.Fatalf("expected missing id 42, got %+v", missing.Missing)
	}
}

func TestExpandBundlePropagatesLookupFailure(t *testing.T) {
	project, _ := bundleTestProject()
	storeErr := errors.New("store down")

	_, err := expandBundle(project, 0, 0, func(string) (*models.Product, error) {
		return nil, storeErr
	})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected lookup failure to propagate, got %v", err)
	}
}
