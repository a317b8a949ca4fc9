package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, sku, name, description, category, brand, barcode, cost_price, selling_price,
	low_stock_threshold, initial_stock, status, location_id, location_kind, submitted_by,
	approved_by, approved_at, rejected_by, rejected_at, rejection_reason, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var (
		p            entity.Product
		status, kind string
	)
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Category, &p.Brand, &p.Barcode,
		&p.CostPrice, &p.SellingPrice, &p.LowStockThreshold, &p.InitialStock,
		&status, &p.LocationID, &kind, &p.SubmittedBy,
		&p.ApprovedBy, &p.ApprovedAt, &p.RejectedBy, &p.RejectedAt, &p.RejectionReason,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = entity.ProductStatus(status)
	p.LocationKind = entity.LocationKind(kind)
	return &p, nil
}

// Create persiste un nuevo producto. El SKU es único sin distinguir mayúsculas.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		p.ID, p.SKU, p.Name, p.Description, p.Category, p.Brand, p.Barcode,
		p.CostPrice, p.SellingPrice, p.LowStockThreshold, p.InitialStock,
		string(p.Status), p.LocationID, string(p.LocationKind), p.SubmittedBy,
		p.ApprovedBy, p.ApprovedAt, p.RejectedBy, p.RejectedAt, p.RejectionReason,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, p.SKU)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, domain.NotFound("producto %s", id)
	}
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate obtiene el producto bloqueando la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, domain.NotFound("producto %s", id)
	}
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// GetBySKU busca por SKU sin distinguir mayúsculas.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE upper(sku) = upper($1)`, sku)
}

func (r *ProductRepo) getOne(ctx context.Context, query string, arg string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("producto %s", arg)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update persiste el estado de aprobación del producto. SKU y ubicación no cambian.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET name = $2, description = $3, status = $4,
			approved_by = $5, approved_at = $6, rejected_by = $7, rejected_at = $8,
			rejection_reason = $9, updated_at = $10
		WHERE id = $1`,
		p.ID, p.Name, p.Description, string(p.Status),
		p.ApprovedBy, p.ApprovedAt, p.RejectedBy, p.RejectedAt,
		p.RejectionReason, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("producto %s", p.ID)
	}
	return nil
}

// List lista productos filtrando por estado y ubicación, más antiguos primero.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR location_id = $2)
		ORDER BY created_at, id
		LIMIT $3 OFFSET $4`,
		string(f.Status), f.LocationID, limitOrAll(f.Limit), f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
