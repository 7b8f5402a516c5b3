package sellers

import (
	"context"
	"fmt"

	"github.com/DJCodeOne/freshwax-sub005/pkg/db/models"
	"github.com/DJCodeOne/freshwax-sub005/pkg/enums"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resolver maps order line items to the seller who earns their revenue.
type Resolver interface {
	WithTx(tx *gorm.DB) Resolver
	// Resolve returns the seller for an item, or nil when no seller can be
	// attributed. Lookup failures are logged and reported as unresolved;
	// a bad item never aborts the caller's settlement.
	Resolve(ctx context.Context, item models.OrderLineItem) *models.Seller
}

type resolver struct {
	repo Repository
	logg *logger.Logger
}

// NewResolver builds a seller resolver.
func NewResolver(repo Repository, logg *logger.Logger) (Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("sellers repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &resolver{repo: repo, logg: logg}, nil
}

func (r *resolver) WithTx(tx *gorm.DB) Resolver {
	if tx == nil {
		return r
	}
	return &resolver{repo: r.repo.WithTx(tx), logg: r.logg}
}

func (r *resolver) Resolve(ctx context.Context, item models.OrderLineItem) *models.Seller {
	sellerID, err := r.sellerIDFor(ctx, item)
	if err != nil {
		ctx = r.logg.WithField(ctx, "item_id", item.ID.String())
		r.logg.Error(ctx, "seller lookup failed; item counted as platform revenue", err)
		return nil
	}
	if sellerID == uuid.Nil {
		ctx = r.logg.WithField(ctx, "item_id", item.ID.String())
		r.logg.Warn(ctx, "no seller attributable; item counted as platform revenue")
		return nil
	}

	seller, err := r.repo.FindSeller(ctx, sellerID)
	if err != nil {
		ctx = r.logg.WithSellerID(ctx, sellerID.String())
		r.logg.Error(ctx, "seller record missing; item counted as platform revenue", err)
		return nil
	}
	return seller
}

func (r *resolver) sellerIDFor(ctx context.Context, item models.OrderLineItem) (uuid.UUID, error) {
	switch item.ItemType {
	case enums.ItemTypeRelease, enums.ItemTypeTrack:
		if item.SourceID == nil {
			return uuid.Nil, nil
		}
		release, err := r.repo.FindRelease(ctx, *item.SourceID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("lookup release %s: %w", item.SourceID, err)
		}
		return release.SubmitterID, nil

	case enums.ItemTypeMerch:
		if item.SourceID == nil {
			return uuid.Nil, nil
		}
		product, err := r.repo.FindMerchProduct(ctx, *item.SourceID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("lookup merch product %s: %w", item.SourceID, err)
		}
		return product.SupplierID, nil

	case enums.ItemTypeCrate:
		// Crate items may carry their seller directly; fall back to the listing.
		if item.SellerID != nil {
			return *item.SellerID, nil
		}
		if item.SourceID == nil {
			return uuid.Nil, nil
		}
		listing, err := r.repo.FindCrateListing(ctx, *item.SourceID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("lookup crate listing %s: %w", item.SourceID, err)
		}
		return listing.SellerID, nil

	default:
		return uuid.Nil, fmt.Errorf("unknown item type %q", item.ItemType)
	}
}
