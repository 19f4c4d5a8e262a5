package repo

import (
	"context"
	"testing"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/dbtest"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"gorm.io/gorm"
)

func TestNewBaseStoresConnection(t *testing.T) {
	db := dbtest.Open(t).DB()
	base := NewBase(db)

	if base.db != db {
		t.Fatalf("expected base db to match provided connection")
	}
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := dbtest.Open(t).DB()
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)

	if withCtx == nil || withCtx.Statement == nil {
		t.Fatalf("expected statement created after WithContext")
	}
	if withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through, got %v", withCtx.Statement.Context)
	}

	if base.DB(nil) != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestBaseBindUsesTransaction(t *testing.T) {
	client := dbtest.Open(t)
	base := NewBase(client.DB())

	if base.Bind(nil).db != client.DB() {
		t.Fatalf("nil tx should keep the connection")
	}

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		bound := base.Bind(tx)
		if bound.db != tx {
			t.Fatalf("expected tx to be bound")
		}
		return bound.DB(context.Background()).Create(&models.Category{Name: "Dairy"}).Error
	})
	if err != nil {
		t.Fatalf("with tx: %v", err)
	}

	var count int64
	if err := client.DB().Model(&models.Category{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected committed row, got %d", count)
	}
}
