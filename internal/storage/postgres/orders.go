package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
)

type orderRepository struct {
	storage *Storage
}

const orderColumns = `id, restaurant_id, customer_user_id, customer_name, customer_email, customer_phone,
    customer_address, items, subtotal, tax_rate, tax_amount, delivery_fee, total_amount,
    order_type, status, payment_method, payment_status, assigned_driver_id, driver_assignment_status,
    assigned_by, payment_received_by_driver, version, created_at, updated_at`

type itemRecord struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

type addressRecord struct {
	Street  string   `json:"street"`
	Line2   string   `json:"line2,omitempty"`
	City    string   `json:"city"`
	ZipCode string   `json:"zipCode"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Notes   string   `json:"notes,omitempty"`
}

func (r *orderRepository) Create(ctx context.Context, o *model.Order, event model.OrderEvent) error {
	const query = `INSERT INTO orders (` + orderColumns + `)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`

	items, address, err := encodeOrderDocs(o)
	if err != nil {
		return err
	}

	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			o.ID, o.RestaurantID, o.Customer.UserID, o.Customer.Name, o.Customer.Email, o.Customer.Phone,
			address, items, o.Subtotal, o.TaxRate, o.TaxAmount, o.DeliveryFee, o.TotalAmount,
			o.Type, o.Status, o.PaymentMethod, o.PaymentStatus, o.AssignedDriverID, o.DriverAssignmentStatus,
			o.AssignedBy, o.PaymentReceivedByDriver, o.Version, o.CreatedAt, o.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domainErrors.ErrAlreadyExists
			}
			return err
		}
		return insertEvent(ctx, tx, event)
	})
}

func (r *orderRepository) Get(ctx context.Context, restaurantID, orderID string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE restaurant_id=$1 AND id=$2`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, restaurantID, orderID))
}

func (r *orderRepository) Update(ctx context.Context, o *model.Order, expectedVersion int64, event model.OrderEvent) error {
	const query = `UPDATE orders SET status=$3, payment_status=$4, assigned_driver_id=$5,
                       driver_assignment_status=$6, assigned_by=$7, payment_received_by_driver=$8,
                       version=$9, updated_at=$10
                   WHERE restaurant_id=$1 AND id=$2 AND version=$11`

	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query,
			o.RestaurantID, o.ID, o.Status, o.PaymentStatus, o.AssignedDriverID,
			o.DriverAssignmentStatus, o.AssignedBy, o.PaymentReceivedByDriver,
			o.Version, o.UpdatedAt, expectedVersion,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrConflict
		}
		return insertEvent(ctx, tx, event)
	})
}

func (r *orderRepository) ListByRestaurant(ctx context.Context, restaurantID string, filter model.OrderFilter) ([]model.Order, error) {
	conds := []string{"restaurant_id=$1"}
	args := []any{restaurantID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != nil {
		add("status=$%d", *filter.Status)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		add("status=ANY($%d)", statuses)
	}
	if filter.From != nil {
		add("created_at>=$%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at<$%d", *filter.To)
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return queryOrders(ctx, r.storage.pool, query, args...)
}

func (r *orderRepository) ListByCustomer(ctx context.Context, restaurantID string, userID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE restaurant_id=$1 AND customer_user_id=$2 ORDER BY created_at DESC`
	return queryOrders(ctx, r.storage.pool, query, restaurantID, userID)
}

func (r *orderRepository) ListAvailableForDrivers(ctx context.Context, restaurantID string) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE restaurant_id=$1 AND status=$2 AND order_type=$3 AND assigned_driver_id IS NULL
                   ORDER BY created_at DESC`
	return queryOrders(ctx, r.storage.pool, query, restaurantID, model.OrderStatusPreparing, model.OrderTypeDelivery)
}

func (r *orderRepository) ListByDriver(ctx context.Context, restaurantID string, driverID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE restaurant_id=$1 AND assigned_driver_id=$2 ORDER BY created_at DESC`
	return queryOrders(ctx, r.storage.pool, query, restaurantID, driverID)
}

func (r *orderRepository) ListCreatedSince(ctx context.Context, restaurantID string, since time.Time) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE restaurant_id=$1 AND created_at>=$2 ORDER BY created_at DESC`
	return queryOrders(ctx, r.storage.pool, query, restaurantID, since)
}

func queryOrders(ctx context.Context, q querier, query string, args ...any) ([]model.Order, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o       model.Order
		address []byte
		items   []byte
	)
	err := row.Scan(
		&o.ID, &o.RestaurantID, &o.Customer.UserID, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone,
		&address, &items, &o.Subtotal, &o.TaxRate, &o.TaxAmount, &o.DeliveryFee, &o.TotalAmount,
		&o.Type, &o.Status, &o.PaymentMethod, &o.PaymentStatus, &o.AssignedDriverID, &o.DriverAssignmentStatus,
		&o.AssignedBy, &o.PaymentReceivedByDriver, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	if err := decodeOrderDocs(&o, items, address); err != nil {
		return nil, err
	}
	return &o, nil
}

func encodeOrderDocs(o *model.Order) (items, address []byte, err error) {
	records := make([]itemRecord, 0, len(o.Items))
	for _, it := range o.Items {
		records = append(records, itemRecord{ProductID: it.ProductID, Name: it.Name, Price: int64(it.Price), Quantity: it.Quantity})
	}
	if items, err = json.Marshal(records); err != nil {
		return nil, nil, fmt.Errorf("encode items: %w", err)
	}

	if a := o.Customer.Address; a != nil {
		rec := addressRecord{
			Street: a.Street, Line2: a.Line2, City: a.City, ZipCode: a.ZipCode,
			Country: a.Country, Lat: a.Lat, Lng: a.Lng, Notes: a.Notes,
		}
		if address, err = json.Marshal(rec); err != nil {
			return nil, nil, fmt.Errorf("encode address: %w", err)
		}
	}
	return items, address, nil
}

func decodeOrderDocs(o *model.Order, items, address []byte) error {
	var records []itemRecord
	if len(items) > 0 {
		if err := json.Unmarshal(items, &records); err != nil {
			return fmt.Errorf("decode items of order %s: %w", o.ID, err)
		}
	}
	o.Items = make([]model.OrderItem, 0, len(records))
	for _, rec := range records {
		o.Items = append(o.Items, model.OrderItem{
			ProductID: rec.ProductID, Name: rec.Name, Price: model.Amount(rec.Price), Quantity: rec.Quantity,
		})
	}

	if len(address) > 0 && string(address) != "null" {
		var rec addressRecord
		if err := json.Unmarshal(address, &rec); err != nil {
			return fmt.Errorf("decode address of order %s: %w", o.ID, err)
		}
		o.Customer.Address = &model.Address{
			Street: rec.Street, Line2: rec.Line2, City: rec.City, ZipCode: rec.ZipCode,
			Country: rec.Country, Lat: rec.Lat, Lng: rec.Lng, Notes: rec.Notes,
		}
	}
	return nil
}
