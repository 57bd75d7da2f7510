package license_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"hollybrook.dev/keygate/api"
	"hollybrook.dev/keygate/internal/license"
	"hollybrook.dev/keygate/internal/product"
	"hollybrook.dev/keygate/internal/testutil"
)

func TestLicenseService(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	prodSvc := product.NewService(db)
	licSvc := license.NewService(db)

	prod, err := prodSvc.Create(ctx, &product.Product{
		ProductCode:    "vault",
		ProductName:    "Hollybrook Vault",
		KeyPrefix:      "HBV-",
		MaxActivations: 2,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	t.Run("create stores normalized key", func(t *testing.T) {
		created, err := licSvc.Create(ctx, &license.License{
			LicenseID:  "lic-1",
			ProductID:  prod.ProductID,
			LicenseKey: "  hbv-abcd1234  ",
			UserRef:    "user-42",
			Status:     api.StatusActive,
			Version:    "1.0.0",
		})
		if err != nil {
			t.Fatalf("create license: %v", err)
		}
		if created.LicenseKey != "HBV-ABCD1234" {
			t.Errorf("expected normalized key HBV-ABCD1234, got %q", created.LicenseKey)
		}
		if created.Activations != 0 {
			t.Errorf("expected 0 activations on a new license, got %d", created.Activations)
		}
	})

	t.Run("lookup is normalization-insensitive", func(t *testing.T) {
		got, err := licSvc.GetByKey(ctx, "hbv-abcd1234")
		if err != nil {
			t.Fatalf("get by key: %v", err)
		}
		if got == nil {
			t.Fatal("expected license, got nil")
		}
		if got.LicenseID != "lic-1" {
			t.Errorf("expected lic-1, got %q", got.LicenseID)
		}
	})

	t.Run("unknown key returns nil", func(t *testing.T) {
		got, err := licSvc.GetByKey(ctx, "HBV-UNKNOWN99")
		if err != nil {
			t.Fatalf("get by key: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("set status", func(t *testing.T) {
		if err := licSvc.SetStatus(ctx, "lic-1", api.StatusExpired); err != nil {
			t.Fatalf("set status: %v", err)
		}
		got, _ := licSvc.GetByID(ctx, "lic-1")
		if got.Status != api.StatusExpired {
			t.Errorf("expected expired, got %q", got.Status)
		}

		if err := licSvc.SetStatus(ctx, "lic-1", "bogus"); err == nil {
			t.Error("expected error for invalid status")
		}
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		if _, err := licSvc.Create(ctx, &license.License{ProductID: prod.ProductID, Status: api.StatusActive}); err == nil {
			t.Error("expected error for missing key")
		}
		if _, err := licSvc.Create(ctx, &license.License{LicenseID: "x", LicenseKey: "HBV-ZZZZ9999", Status: api.StatusActive}); err == nil {
			t.Error("expected error for missing product")
		}
	})
}

func TestIncrementActivations(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	prodSvc := product.NewService(db)
	licSvc := license.NewService(db)

	prod, err := prodSvc.Create(ctx, &product.Product{
		ProductCode:    "vault",
		ProductName:    "Hollybrook Vault",
		KeyPrefix:      "HBV-",
		MaxActivations: 2,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if _, err := licSvc.Create(ctx, &license.License{
		LicenseID:  "lic-1",
		ProductID:  prod.ProductID,
		LicenseKey: "HBV-ABCD1234",
		Status:     api.StatusActive,
	}); err != nil {
		t.Fatalf("create license: %v", err)
	}

	claim := func(t *testing.T, max int) bool {
		t.Helper()
		var claimed bool
		err := licSvc.WithTx(ctx, func(tx *sqlx.Tx) error {
			var err error
			claimed, err = licSvc.Repo().IncrementActivations(ctx, tx, "lic-1", max)
			return err
		})
		if err != nil {
			t.Fatalf("increment activations: %v", err)
		}
		return claimed
	}

	// Claim slots up to the cap; the conditional update must refuse the third.
	if !claim(t, 2) {
		t.Fatal("first claim should succeed")
	}
	if !claim(t, 2) {
		t.Fatal("second claim should succeed")
	}
	if claim(t, 2) {
		t.Fatal("third claim should be refused at the cap")
	}

	got, err := licSvc.GetByID(ctx, "lic-1")
	if err != nil {
		t.Fatalf("get license: %v", err)
	}
	if got.Activations != 2 {
		t.Errorf("expected activations to stay at 2, got %d", got.Activations)
	}
}
