package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/tradenest-api/internal/application/dto"
	appinv "github.com/jhoicas/tradenest-api/internal/application/inventory"
	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/inventory"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
	"github.com/jhoicas/tradenest-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// maxSKUAttempts intentos de generación de SKU antes de rendirse por colisiones.
const maxSKUAttempts = 8

// ProductUseCase puerta de aprobación de productos: alta pendiente, aprobación y rechazo.
// Aprobar abre el saldo del producto en su ubicación dentro de la misma transacción.
type ProductUseCase struct {
	txRunner  appinv.TxRunner
	products  repository.ProductRepository
	locations repository.LocationRepository
	ledger    *appinv.Ledger
	now       appinv.Clock
	log       *logger.Logger
}

// NewProductUseCase construye el caso de uso. now nil usa time.Now.
func NewProductUseCase(
	txRunner appinv.TxRunner,
	products repository.ProductRepository,
	locations repository.LocationRepository,
	ledger *appinv.Ledger,
	now appinv.Clock,
	log *logger.Logger,
) *ProductUseCase {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{
		txRunner:  txRunner,
		products:  products,
		locations: locations,
		ledger:    ledger,
		now:       now,
		log:       log,
	}
}

// Submit da de alta un producto en estado pending. No crea saldo en el ledger.
func (uc *ProductUseCase) Submit(ctx context.Context, actor string, in dto.SubmitProductRequest) (*dto.ProductResponse, error) {
	if err := validateSubmit(in); err != nil {
		return nil, err
	}
	loc, err := uc.locations.GetByID(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}
	if !loc.IsActive {
		return nil, domain.Invalid("ubicación %s inactiva", loc.ID)
	}

	now := uc.now()
	product := &entity.Product{
		ID:                uuid.New().String(),
		SKU:               strings.TrimSpace(in.SKU),
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		Category:          strings.TrimSpace(in.Category),
		Brand:             strings.TrimSpace(in.Brand),
		Barcode:           in.Barcode,
		CostPrice:         in.CostPrice,
		SellingPrice:      in.SellingPrice,
		LowStockThreshold: in.LowStockThreshold,
		InitialStock:      in.InitialStock,
		Status:            entity.ProductStatusPending,
		LocationID:        loc.ID,
		LocationKind:      loc.Kind,
		SubmittedBy:       actor,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if product.SKU != "" {
		if err := uc.products.Create(ctx, product); err != nil {
			return nil, err
		}
	} else if err := uc.createWithGeneratedSKU(ctx, product, now); err != nil {
		return nil, err
	}

	uc.log.Info().Str("product_id", product.ID).Str("sku", product.SKU).Str("actor", actor).
		Msg("producto registrado, pendiente de aprobación")
	return toProductResponse(product), nil
}

// createWithGeneratedSKU genera el SKU y reintenta con sufijo mientras choque con uno existente.
func (uc *ProductUseCase) createWithGeneratedSKU(ctx context.Context, product *entity.Product, at time.Time) error {
	for attempt := 0; attempt < maxSKUAttempts; attempt++ {
		product.SKU = inventory.GenerateSKU(product.Category, product.Brand, at, attempt)
		_, err := uc.products.GetBySKU(ctx, product.SKU)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		err = uc.products.Create(ctx, product)
		if errors.Is(err, domain.ErrDuplicate) {
			continue
		}
		return err
	}
	return domain.ErrDuplicate
}

// Approve pasa el producto a approved y abre su saldo con el stock inicial.
// Una segunda llamada falla con ErrInvalidStateTransition sin tocar el ledger.
func (uc *ProductUseCase) Approve(ctx context.Context, productID, approverID string) (*dto.ProductResponse, error) {
	if strings.TrimSpace(approverID) == "" {
		return nil, domain.Invalid("el aprobador es obligatorio")
	}
	var out *entity.Product
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		p, err := repos.Products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if err := p.Approve(approverID, uc.now()); err != nil {
			return err
		}
		if err := repos.Products.Update(ctx, p); err != nil {
			return err
		}
		if err := uc.ledger.OpenInTx(ctx, repos, p.ID, p.LocationID, p.InitialStock, approverID); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", out.ID).Str("sku", out.SKU).Str("actor", approverID).
		Int64("initial_stock", out.InitialStock).Msg("producto aprobado")
	return toProductResponse(out), nil
}

// Reject pasa el producto a rejected. No interactúa con el ledger.
func (uc *ProductUseCase) Reject(ctx context.Context, productID, approverID, reason string) (*dto.ProductResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.Invalid("el motivo de rechazo es obligatorio")
	}
	var out *entity.Product
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		p, err := repos.Products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if err := p.Reject(approverID, reason, uc.now()); err != nil {
			return err
		}
		out = p
		return repos.Products.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", out.ID).Str("actor", approverID).Str("reason", reason).Msg("producto rechazado")
	return toProductResponse(out), nil
}

// Get obtiene un producto por ID.
func (uc *ProductUseCase) Get(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// ListPending lista los productos que esperan aprobación, más antiguos primero.
func (uc *ProductUseCase) ListPending(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	return uc.List(ctx, dto.ProductListRequest{PageRequest: page, Status: string(entity.ProductStatusPending)})
}

// List lista productos con filtros opcionales de estado y ubicación.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductListRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	status := entity.ProductStatus(in.Status)
	if status != "" && !status.Valid() {
		return nil, domain.Invalid("estado %q no soportado", in.Status)
	}
	list, err := uc.products.List(ctx, repository.ProductFilter{
		Status:     status,
		LocationID: in.LocationID,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

func validateSubmit(in dto.SubmitProductRequest) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return domain.Invalid("el nombre es obligatorio")
	case strings.TrimSpace(in.Category) == "":
		return domain.Invalid("la categoría es obligatoria")
	case strings.TrimSpace(in.LocationID) == "":
		return domain.Invalid("la ubicación es obligatoria")
	case in.CostPrice.LessThan(decimal.Zero):
		return domain.Invalid("el costo no puede ser negativo")
	case in.SellingPrice.LessThan(in.CostPrice):
		return domain.Invalid("el precio de venta (%s) no puede ser menor al costo (%s)", in.SellingPrice, in.CostPrice)
	case in.LowStockThreshold < 0:
		return domain.Invalid("el umbral de stock bajo no puede ser negativo")
	case in.InitialStock < 0:
		return domain.Invalid("el stock inicial no puede ser negativo")
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		Description:       p.Description,
		Category:          p.Category,
		Brand:             p.Brand,
		Barcode:           p.Barcode,
		CostPrice:         p.CostPrice,
		SellingPrice:      p.SellingPrice,
		LowStockThreshold: p.LowStockThreshold,
		InitialStock:      p.InitialStock,
		Status:            string(p.Status),
		LocationID:        p.LocationID,
		LocationKind:      string(p.LocationKind),
		SubmittedBy:       p.SubmittedBy,
		ApprovedBy:        p.ApprovedBy,
		ApprovedAt:        p.ApprovedAt,
		RejectedBy:        p.RejectedBy,
		RejectedAt:        p.RejectedAt,
		RejectionReason:   p.RejectionReason,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
